package server

import "html/template"

var consentTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorize {{.ClientDescription}}</title></head>
<body>
<h1>Authorize {{.ClientDescription}}</h1>
{{if .Scopes}}<p>The application is requesting access to:</p>
<ul>{{range .Scopes}}<li>{{.}}</li>{{end}}</ul>{{end}}
<form method="POST" action="/oauth/authorize">
  <input type="hidden" name="client_id" value="{{.ClientID}}">
  <input type="hidden" name="redirect_uri" value="{{.RedirectURI}}">
  <input type="hidden" name="response_type" value="{{.ResponseType}}">
  <input type="hidden" name="scope" value="{{.Scope}}">
  <input type="hidden" name="state" value="{{.State}}">
  <input type="hidden" name="nonce" value="{{.Nonce}}">
  <input type="hidden" name="code_challenge" value="{{.CodeChallenge}}">
  <input type="hidden" name="code_challenge_method" value="{{.CodeChallengeMethod}}">
  <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
  <label>Username <input type="text" name="username"></label>
  <label>Password <input type="password" name="password"></label>
  <button type="submit" name="application_authorized" value="true">Approve</button>
  <button type="submit" name="application_authorized" value="false">Deny</button>
</form>
</body>
</html>
`))

var deviceTemplate = template.Must(template.New("device").Parse(`<!DOCTYPE html>
<html>
<head><title>Device Activation</title></head>
<body>
<h1>Device Activation</h1>
<form method="POST" action="/oauth/device">
  <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
  <label>Code <input type="text" name="user_code" value="{{.UserCode}}"></label>
  <label>Username <input type="text" name="username"></label>
  <label>Password <input type="password" name="password"></label>
  <button type="submit">Activate</button>
</form>
</body>
</html>
`))
