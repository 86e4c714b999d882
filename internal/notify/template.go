package notify

import (
	"bytes"
	"html/template"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

const confirmationSubject = "Order confirmation"

var confirmationBody = template.Must(template.New("confirmation").Parse(`<h1>Thank you for shopping with us</h1>
<p>Total: {{.TotalPrice.StringFixed 2}}</p>
<p>Payment method: {{.PaymentMethod}}</p>
<p>Payment status: {{.Status}}</p>
`))

// Email is a rendered message ready for the mailer.
type Email struct {
	To      string
	Subject string
	HTML    string
}

func RenderConfirmation(o shop.OrderSummary, to string) (Email, error) {
	var buf bytes.Buffer
	if err := confirmationBody.Execute(&buf, o); err != nil {
		return Email{}, err
	}
	return Email{To: to, Subject: confirmationSubject, HTML: buf.String()}, nil
}
