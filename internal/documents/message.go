package documents

import (
	"fmt"
	"strings"

	"github.com/cuongbtq/jobcard-service/internal/domain"
)

// MessageType selects the message template
type MessageType string

const (
	MessageQuote   MessageType = "QUOTE"
	MessageBooking MessageType = "BOOKING"
	MessageInvoice MessageType = "INVOICE"
	MessageReport  MessageType = "REPORT"
)

// ParseMessageType accepts any letter case
func ParseMessageType(s string) (MessageType, error) {
	switch t := MessageType(strings.ToUpper(strings.TrimSpace(s))); t {
	case MessageQuote, MessageBooking, MessageInvoice, MessageReport:
		return t, nil
	}
	return "", domain.NewValidationError("type", fmt.Sprintf("unknown message type %q", s))
}

// Message is a composed client message
type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ComposeOptions carries values that are not part of the job
type ComposeOptions struct {
	// ViewURL is the public job viewer link
	ViewURL string
	// PortalPIN is included in quote messages when a portal login exists
	PortalPIN string
	// InvoiceDueDate is used for invoice messages when the job has no materialized invoice
	InvoiceDueDate string
}

// Compose builds the subject and body for t
func Compose(t MessageType, job *domain.JobCard, company Company, opts ComposeOptions) (Message, error) {
	money := NewMoney(company.CurrencySymbol)
	greeting := "Hi"
	if name := firstName(job.Client.Name); name != "" {
		greeting = "Hi " + name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s,\n\n", greeting)

	var subject string
	switch t {
	case MessageQuote:
		subject = fmt.Sprintf("Quotation %s from %s", job.RefNumber, company.Name)
		fmt.Fprintf(&b, "Thank you for choosing %s. Your quotation %s totals %s (incl. VAT).\n",
			company.Name, job.RefNumber, money.Format(job.Quote.Total))
		if dep := job.Quote.DepositAmount(); dep > 0 {
			fmt.Fprintf(&b, "A deposit of %s is required to confirm the booking.\n", money.Format(dep))
		}
		if opts.ViewURL != "" {
			fmt.Fprintf(&b, "\nView your quotation online: %s\n", opts.ViewURL)
		}
		if opts.PortalPIN != "" {
			fmt.Fprintf(&b, "Client portal login: %s, PIN %s\n", job.Client.Email, opts.PortalPIN)
		}

	case MessageBooking:
		subject = fmt.Sprintf("Booking confirmation %s", job.RefNumber)
		if job.ServiceDate == "" {
			return Message{}, domain.NewValidationError("serviceDate", "job is not scheduled")
		}
		when := job.ServiceDate
		if job.ServiceTime != "" {
			when += " at " + job.ServiceTime
		}
		fmt.Fprintf(&b, "Your pest control service with %s is booked for %s.\n", company.Name, when)
		if lines := job.Client.Address.Lines(); len(lines) > 0 {
			fmt.Fprintf(&b, "Address: %s\n", strings.Join(lines, ", "))
		}
		b.WriteString("Please ensure access to all treatment areas.\n")

	case MessageInvoice:
		number := domain.InvoiceNumber(job.RefNumber)
		total := job.Quote.Total
		due := opts.InvoiceDueDate
		if inv := job.Invoice; inv != nil {
			number, total, due = inv.Number, inv.Total, inv.DueDate
		}
		subject = fmt.Sprintf("Invoice %s from %s", number, company.Name)
		fmt.Fprintf(&b, "Please find invoice %s for %s.\n", number, money.Format(total))
		if job.DepositPaid {
			if dep := job.Quote.DepositAmount(); dep > 0 {
				fmt.Fprintf(&b, "Deposit received: %s. Balance due: %s.\n", money.Format(dep), money.Format(total-dep))
			}
		}
		if due != "" {
			fmt.Fprintf(&b, "Payment is due by %s.\n", due)
		}
		if company.HasBank() {
			fmt.Fprintf(&b, "\nBank: %s\nAccount: %s\nAccount no: %s\n",
				company.Bank.BankName, company.Bank.AccountName, company.Bank.AccountNumber)
			if company.Bank.BranchCode != "" {
				fmt.Fprintf(&b, "Branch code: %s\n", company.Bank.BranchCode)
			}
			fmt.Fprintf(&b, "Reference: %s\n", job.RefNumber)
		}

	case MessageReport:
		subject = fmt.Sprintf("Service report %s", job.RefNumber)
		treated := 0
		for _, cp := range job.Checkpoints {
			if cp.IsTreated {
				treated++
			}
		}
		fmt.Fprintf(&b, "Your service report for %s is ready. %d of %d checkpoints were treated.\n",
			job.RefNumber, treated, len(job.Checkpoints))
		if opts.ViewURL != "" {
			fmt.Fprintf(&b, "\nView the report online: %s\n", opts.ViewURL)
		}

	default:
		return Message{}, domain.NewValidationError("type", fmt.Sprintf("unknown message type %q", t))
	}

	fmt.Fprintf(&b, "\nKind regards,\n%s", company.Name)
	if company.Phone != "" {
		fmt.Fprintf(&b, "\n%s", company.Phone)
	}

	return Message{Subject: subject, Body: b.String()}, nil
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
