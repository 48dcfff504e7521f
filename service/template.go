package service

import (
	"html/template"
	"net/url"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>GCM queue</title>
</head>
<body>
<h1>Send a push message</h1>
{{with .Error}}<p class="error">Error {{.Code}}: {{.Text}}</p>{{end}}
{{with .Response}}<h2>Response</h2>
<pre class="response">{{.}}</pre>{{end}}
{{with .InvalidTokens}}<h2>Invalid tokens</h2>
<ul class="invalid-tokens">{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}
<form method="post" action="/">
<p><label>GCM url <input type="text" name="gcmUrl" size="60" value="{{.Endpoint}}"></label></p>
<p><label>Server api key <input type="text" name="serverApiKey" size="60" value="{{.Form.Get "serverApiKey"}}"></label></p>
<p><label>To <input type="text" name="to" size="60" value="{{.Form.Get "to"}}"></label></p>
<p><label>Registration ids (one per line)<br><textarea name="registrationIds" rows="4" cols="60">{{.Form.Get "registrationIds"}}</textarea></label></p>
<p><label>Collapse key <input type="text" name="collapseKey" value="{{.Form.Get "collapseKey"}}"></label></p>
<p><label>Priority <select name="priority">
<option value="">default</option>
<option value="high"{{if eq (.Form.Get "priority") "high"}} selected{{end}}>high</option>
<option value="normal"{{if eq (.Form.Get "priority") "normal"}} selected{{end}}>normal</option>
</select></label></p>
<p><label>Content available <select name="contentAvailable">{{template "bool" .Form.Get "contentAvailable"}}</select></label></p>
<p><label>Delay while idle <select name="delayWhileIdle">{{template "bool" .Form.Get "delayWhileIdle"}}</select></label></p>
<p><label>Time to live <input type="text" name="timeToLive" value="{{.Form.Get "timeToLive"}}"></label></p>
<p><label>Restricted package name <input type="text" name="restrictedPackageName" value="{{.Form.Get "restrictedPackageName"}}"></label></p>
<p><label>Dry run <select name="dryRun">{{template "bool" .Form.Get "dryRun"}}</select></label></p>
<p><label>Data (json object)<br><textarea name="data" rows="6" cols="60">{{.Form.Get "data"}}</textarea></label></p>
<p><label>Notification (json object)<br><textarea name="notification" rows="6" cols="60">{{.Form.Get "notification"}}</textarea></label></p>
<p><input type="submit" value="Send"></p>
</form>
</body>
</html>
{{define "bool"}}<option value="0"{{if ne . "1"}} selected{{end}}>false</option>
<option value="1"{{if eq . "1"}} selected{{end}}>true</option>{{end}}`))

type pageError struct {
	Code int
	Text string
}

type page struct {
	Endpoint      string
	Form          url.Values
	Error         *pageError
	Response      string
	InvalidTokens []string
}
