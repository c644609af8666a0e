package jobcard

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/documents"
	"github.com/cuongbtq/jobcard-service/internal/domain"
)

// PreparedMessage is a composed message and the deep link that opens it in the chosen channel
type PreparedMessage struct {
	Type    documents.MessageType `json:"type"`
	Channel documents.Channel     `json:"channel"`
	Subject string                `json:"subject"`
	Body    string                `json:"body"`
	Link    string                `json:"link"`
	// PortalUserCreated is set when a quote message provisioned a new portal login
	PortalUserCreated bool `json:"portalUserCreated"`
}

// PublicCheckpoint is the client-facing summary of a checkpoint
type PublicCheckpoint struct {
	Area      string     `json:"area"`
	PestType  string     `json:"pestType"`
	Severity  string     `json:"severity"`
	IsTreated bool       `json:"isTreated"`
	ScanEnd   *time.Time `json:"scanEnd,omitempty"`
}

// PublicJobView is what the client-facing viewer may see of a job
type PublicJobView struct {
	ID           string                 `json:"id"`
	RefNumber    string                 `json:"refNumber"`
	ClientName   string                 `json:"clientName"`
	Status       domain.JobStatus       `json:"status"`
	StatusLabel  string                 `json:"statusLabel"`
	ServiceDate  string                 `json:"serviceDate,omitempty"`
	ServiceTime  string                 `json:"serviceTime,omitempty"`
	LineItems    []domain.QuoteLineItem `json:"lineItems"`
	Subtotal     float64                `json:"subtotal"`
	VATRate      float64                `json:"vatRate"`
	Total        float64                `json:"total"`
	Deposit      float64                `json:"deposit"`
	Invoice      *domain.JobInvoice     `json:"invoice,omitempty"`
	Checkpoints  []PublicCheckpoint     `json:"checkpoints"`
	Certificates []string               `json:"certificates"`
}

// PrepareMessage composes a message for the job's client and the deep link for channel.
// Quote messages provision a portal login for the client's email when none exists.
func (s *Service) PrepareMessage(ctx context.Context, jobID string, t documents.MessageType, channel documents.Channel) (PreparedMessage, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return PreparedMessage{}, err
	}

	opts := documents.ComposeOptions{}
	out := PreparedMessage{Type: t, Channel: channel}
	var persistErr error

	switch t {
	case documents.MessageQuote:
		opts.ViewURL = domain.QRPayload(s.settings.PublicOrigin, job.ID)
		if job.Client.Email != "" {
			user, created, err := s.provisionClientUser(ctx, job.Client)
			persistErr = err
			opts.PortalPIN = user.PIN
			out.PortalUserCreated = created
		}
	case documents.MessageReport:
		opts.ViewURL = domain.QRPayload(s.settings.PublicOrigin, job.ID)
	case documents.MessageInvoice:
		if job.Invoice == nil {
			opts.InvoiceDueDate = s.now().AddDate(0, 0, s.settings.Company.PaymentTermsDays).Format(domain.DateLayout)
		}
	}

	msg, err := documents.Compose(t, job, s.settings.Company, opts)
	if err != nil {
		return PreparedMessage{}, err
	}
	link, err := documents.Link(channel, job.Client, s.settings.DialCode, msg)
	if err != nil {
		return PreparedMessage{}, err
	}

	out.Subject, out.Body, out.Link = msg.Subject, msg.Body, link
	return out, persistErr
}

// RenderDocument renders the quote, invoice or report of a job as HTML
func (s *Service) RenderDocument(ctx context.Context, jobID string, kind documents.Kind) (string, error) {
	if s.renderer == nil {
		return "", fmt.Errorf("document rendering is not configured: %w", domain.ErrConflict)
	}
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(kind, job, s.settings.Company, s.ListServices(ctx)...)
}

// PublicView returns the client-facing view of a job, served from the view cache when possible
func (s *Service) PublicView(ctx context.Context, jobID string) (PublicJobView, error) {
	var view PublicJobView
	loader := func(ctx context.Context) (any, error) {
		job, err := s.lookup(ctx, jobID)
		if err != nil {
			return nil, err
		}
		return newPublicView(job), nil
	}

	if s.views == nil {
		v, err := loader(ctx)
		if err != nil {
			return PublicJobView{}, err
		}
		return v.(PublicJobView), nil
	}
	if err := s.views.Fetch(ctx, jobID, &view, loader); err != nil {
		return PublicJobView{}, err
	}
	return view, nil
}

func newPublicView(job *domain.JobCard) PublicJobView {
	v := PublicJobView{
		ID:           job.ID,
		RefNumber:    job.RefNumber,
		ClientName:   job.Client.Name,
		Status:       job.Status,
		StatusLabel:  job.Status.Label(),
		ServiceDate:  job.ServiceDate,
		ServiceTime:  job.ServiceTime,
		LineItems:    append([]domain.QuoteLineItem{}, job.Quote.LineItems...),
		Subtotal:     job.Quote.Subtotal,
		VATRate:      job.Quote.VATRate,
		Total:        job.Quote.Total,
		Deposit:      job.Quote.DepositAmount(),
		Invoice:      job.Invoice,
		Checkpoints:  make([]PublicCheckpoint, 0, len(job.Checkpoints)),
		Certificates: append([]string{}, job.Certificates...),
	}
	for _, cp := range job.Checkpoints {
		v.Checkpoints = append(v.Checkpoints, PublicCheckpoint{
			Area:      cp.Area,
			PestType:  cp.PestType,
			Severity:  string(cp.Severity),
			IsTreated: cp.IsTreated,
			ScanEnd:   cp.ScanEnd,
		})
	}
	return v
}
