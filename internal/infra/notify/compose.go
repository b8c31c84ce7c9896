package notify

import (
	"strings"

	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/infra/i18n"
)

// Email is a rendered plain-text message.
type Email struct {
	To      string
	Subject string
	Body    string
}

const expiryLayout = "January 2, 2006 15:04 MST"

func composeInvite(t *i18n.Translator, msg adapter.InviteMessage) Email {
	var b strings.Builder
	b.WriteString(t.T("invite_greeting", msg.Name))
	b.WriteString("\n\n")
	b.WriteString(t.T("invite_body", msg.CampaignName))
	b.WriteString("\n\n")
	b.WriteString(msg.Link)
	b.WriteString("\n\n")
	if msg.ExpiresAt != nil {
		b.WriteString(t.T("invite_expiry", msg.ExpiresAt.UTC().Format(expiryLayout)))
	} else {
		b.WriteString(t.T("invite_no_expiry"))
	}
	b.WriteString("\n\n")
	b.WriteString(t.T("signature"))
	b.WriteString("\n")
	return Email{To: msg.To, Subject: t.T("invite_subject", msg.CampaignName), Body: b.String()}
}

func composeConfirmation(t *i18n.Translator, msg adapter.ConfirmationMessage) Email {
	var b strings.Builder
	b.WriteString(t.T("confirmation_greeting", msg.Name))
	b.WriteString("\n\n")
	b.WriteString(t.T("confirmation_body", msg.ProductName))
	b.WriteString("\n")
	b.WriteString(t.T("confirmation_order_number", msg.OrderNumber))
	b.WriteString("\n\n")
	b.WriteString(t.T("signature"))
	b.WriteString("\n")
	return Email{To: msg.To, Subject: t.T("confirmation_subject", msg.OrderNumber), Body: b.String()}
}
