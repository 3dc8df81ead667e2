package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	RouteAuthorize           = "/oauth/authorize"
	RouteToken               = "/oauth/token"
	RouteDeviceAuthorization = "/oauth/device_authorization"
	RouteDeviceVerification  = "/oauth/device"
	RouteUserInfo            = "/oauth/userinfo"
	RouteOpenIDConfiguration = "/.well-known/openid-configuration"
	RouteJWKS                = "/.well-known/jwks.json"
	RouteMetrics             = "/metrics"
)

func (s *Server) initRoutes() {
	api := []func(next http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.CORSMiddleware,
	}
	limited := append(append([]func(next http.HandlerFunc) http.HandlerFunc{}, api...), s.RateLimitMiddleware())

	s.RegisterRouteHandler("GET "+RouteAuthorize, ChainMiddleware(s.AuthorizeGetHandler(), api...))
	s.RegisterRouteHandler("POST "+RouteAuthorize, ChainMiddleware(s.AuthorizePostHandler(), api...))
	s.RegisterRouteHandler("POST "+RouteToken, ChainMiddleware(s.TokenHandler(), limited...))
	s.RegisterRouteHandler("POST "+RouteDeviceAuthorization, ChainMiddleware(s.DeviceAuthorizationHandler(), limited...))
	s.RegisterRouteHandler("GET "+RouteDeviceVerification, ChainMiddleware(s.DeviceVerificationGetHandler(), api...))
	s.RegisterRouteHandler("POST "+RouteDeviceVerification, ChainMiddleware(s.DeviceVerificationPostHandler(), api...))
	s.RegisterRouteHandler("GET "+RouteUserInfo, ChainMiddleware(s.UserInfoHandler(), api...))
	s.RegisterRouteHandler("GET "+RouteOpenIDConfiguration, ChainMiddleware(s.OpenIDConfigurationHandler(), api...))
	s.RegisterRouteHandler("GET "+RouteJWKS, ChainMiddleware(s.JWKSHandler(), api...))
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
