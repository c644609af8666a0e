package documents

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cuongbtq/jobcard-service/internal/domain"
)

// Channel is a delivery channel for a composed message
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
)

// ParseChannel validates a channel name
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case ChannelWhatsApp, ChannelSMS, ChannelEmail:
		return c, nil
	}
	return "", domain.NewValidationError("channel", fmt.Sprintf("unknown channel %q", s))
}

// NormalizePhone strips whitespace, dashes and parentheses and rewrites a leading 0 to dialCode
func NormalizePhone(raw, dialCode string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')':
			return -1
		}
		return r
	}, raw)
	if strings.HasPrefix(cleaned, "0") {
		cleaned = dialCode + cleaned[1:]
	}
	return cleaned
}

// encodeComponent escapes like encodeURIComponent so spaces become %20, not +
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// WhatsAppLink builds https://wa.me/<digits>?text=<message>
func WhatsAppLink(phone, dialCode, text string) string {
	digits := strings.TrimPrefix(NormalizePhone(phone, dialCode), "+")
	return "https://wa.me/" + digits + "?text=" + encodeComponent(text)
}

// SMSLink builds sms:<number>?body=<message>
func SMSLink(phone, dialCode, body string) string {
	return "sms:" + NormalizePhone(phone, dialCode) + "?body=" + encodeComponent(body)
}

// MailtoLink builds mailto:<email>?subject=...&body=...
func MailtoLink(email, subject, body string) string {
	return "mailto:" + strings.TrimSpace(email) + "?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// Link renders msg for channel, addressed to the job's client
func Link(channel Channel, client domain.ClientDetails, dialCode string, msg Message) (string, error) {
	switch channel {
	case ChannelWhatsApp, ChannelSMS:
		if strings.TrimSpace(client.Phone) == "" {
			return "", domain.NewValidationError("client.phone", "is required for "+string(channel))
		}
		if channel == ChannelWhatsApp {
			return WhatsAppLink(client.Phone, dialCode, msg.Body), nil
		}
		return SMSLink(client.Phone, dialCode, msg.Body), nil
	case ChannelEmail:
		if strings.TrimSpace(client.Email) == "" {
			return "", domain.NewValidationError("client.email", "is required for email")
		}
		return MailtoLink(client.Email, msg.Subject, msg.Body), nil
	}
	return "", domain.NewValidationError("channel", fmt.Sprintf("unknown channel %q", channel))
}
