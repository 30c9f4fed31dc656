package http

import (
	"html/template"
	"net/http"
)

// CallbackSuccessMessage is posted to the opener window once credentials
// have been stored.
const CallbackSuccessMessage = "hubspotIntegrationSuccess"

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>HubSpot connected</title></head>
<body>
<p>HubSpot is connected. You can close this window.</p>
<script>
if (window.opener) {
  window.opener.postMessage({{.Message}}, '*');
}
window.close();
</script>
</body>
</html>
`))

// writeCallbackPage renders the page that notifies the opener and closes the popup.
func writeCallbackPage(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	return callbackPage.Execute(w, struct{ Message string }{Message: CallbackSuccessMessage})
}
