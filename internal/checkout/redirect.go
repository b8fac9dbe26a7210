package checkout

import (
	"fmt"
	"html/template"
	"io"

	"github.com/anishff444/nepwears/internal/domain"
)

var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex">
<title>Redirecting to eSewa</title>
</head>
<body onload="document.forms[0].submit()">
<form method="POST" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript>
<p>Continue to eSewa to complete your payment.</p>
<button type="submit">Pay with eSewa</button>
</noscript>
</form>
</body>
</html>
`))

type formField struct {
	Name  string
	Value string
}

type redirectData struct {
	Action string
	Fields []formField
}

// RenderRedirect writes an HTML page that posts the payment fields to the
// gateway as soon as it loads. Fields are written in key order.
func RenderRedirect(w io.Writer, r *domain.PaymentRedirect) error {
	if err := checkRedirect(r); err != nil {
		return err
	}

	data := redirectData{Action: r.URL}
	for _, k := range r.PaymentData.Keys() {
		data.Fields = append(data.Fields, formField{Name: k, Value: r.PaymentData[k]})
	}

	if err := redirectPage.Execute(w, data); err != nil {
		return fmt.Errorf("render payment redirect: %w", err)
	}
	return nil
}
