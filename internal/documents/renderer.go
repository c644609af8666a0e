// Package documents renders printable job documents and composes client messages.
package documents

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Kind names a printable document
type Kind string

const (
	KindQuote   Kind = "quote"
	KindInvoice Kind = "invoice"
	KindReport  Kind = "report"
)

// ParseKind validates a document kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindQuote, KindInvoice, KindReport:
		return k, nil
	}
	return "", domain.NewValidationError("kind", fmt.Sprintf("unknown document kind %q", s))
}

// Renderer produces HTML documents. Rendering never mutates the job.
type Renderer struct {
	templates *template.Template
	lang      string
	now       func() time.Time
}

// NewRenderer parses the embedded templates
func NewRenderer(lang string, now func() time.Time) (*Renderer, error) {
	if now == nil {
		now = time.Now
	}
	if lang == "" {
		lang = "en"
	}

	tmpl, err := template.New("documents").Funcs(template.FuncMap{
		// replaced per render with the company currency
		"money":   func(float64) string { return "" },
		"percent": Percent,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse document templates: %w", err)
	}

	return &Renderer{templates: tmpl, lang: lang, now: now}, nil
}

type lineView struct {
	Name        string
	Description string
	Qty         float64
	UnitPrice   float64
	Total       float64
}

type paymentView struct {
	Method    string
	Amount    float64
	Date      string
	Reference string
}

type checkpointView struct {
	Code             string
	Area             string
	PestType         string
	Severity         string
	InfestationLevel string
	ActionPriority   string
	Notes            string
	TasksDone        int
	TasksTotal       int
	Treated          bool
	ScanWindow       string
}

type documentView struct {
	Lang     string
	Title    string
	Number   string
	Date     string
	DueDate  string
	Company  Company
	Job      *domain.JobCard
	Services []string
	Notes    string

	Lines       []lineView
	Subtotal    float64
	VATRate     float64
	VAT         float64
	Total       float64
	ShowDeposit bool
	Deposit     float64
	Balance     float64

	Payment     *paymentView
	Checkpoints []checkpointView
	Usage       []domain.MaterialUsage
}

// Render dispatches on kind
func (r *Renderer) Render(kind Kind, job *domain.JobCard, company Company, services ...domain.ServiceOffering) (string, error) {
	switch kind {
	case KindQuote:
		return r.Quote(job, company, services...)
	case KindInvoice:
		return r.Invoice(job, company)
	case KindReport:
		return r.Report(job, company)
	}
	return "", domain.NewValidationError("kind", fmt.Sprintf("unknown document kind %q", kind))
}

// Quote renders the quotation. Service ids are printed with their offering title when one is supplied.
func (r *Renderer) Quote(job *domain.JobCard, company Company, services ...domain.ServiceOffering) (string, error) {
	q := job.Quote
	v := r.base("Quotation", job, company)
	v.Number = job.RefNumber
	v.Notes = q.Notes
	v.Services = serviceTitles(job.SelectedServices, services)
	v.Lines = lineViews(q.LineItems)
	v.Subtotal, v.VATRate, v.VAT, v.Total = q.Subtotal, q.VATRate, q.VATAmount(), q.Total
	if q.DepositType != domain.DepositNone && q.DepositType != "" {
		v.ShowDeposit = true
		v.Deposit = q.DepositAmount()
		v.Balance = q.BalanceDue()
	}
	return r.execute("quote.html", v, company)
}

// Invoice renders the invoice. A job without a materialized invoice is previewed from its quote.
func (r *Renderer) Invoice(job *domain.JobCard, company Company) (string, error) {
	inv := job.Invoice
	if inv == nil {
		inv = domain.NewInvoice(domain.InvoiceNumber(job.RefNumber), job.Quote, r.now(), company.PaymentTermsDays)
	}

	v := r.base("Tax Invoice", job, company)
	v.Number = inv.Number
	v.Date = inv.Date
	v.DueDate = inv.DueDate
	v.Notes = inv.Notes
	v.Lines = lineViews(inv.LineItems)
	v.Subtotal, v.VATRate, v.Total = inv.Subtotal, inv.VATRate, inv.Total
	v.VAT = inv.Total - inv.Subtotal
	if job.DepositPaid && job.Quote.DepositType != domain.DepositNone && job.Quote.DepositType != "" {
		v.ShowDeposit = true
		v.Deposit = job.Quote.DepositAmount()
		v.Balance = inv.Total - v.Deposit
	}
	if p := job.PaymentRecord; p != nil {
		v.Payment = &paymentView{
			Method:    string(p.Method),
			Amount:    p.Amount,
			Date:      p.Date.Format(domain.DateLayout),
			Reference: p.Reference,
		}
	}
	return r.execute("invoice.html", v, company)
}

// Report renders the assessment and treatment report
func (r *Renderer) Report(job *domain.JobCard, company Company) (string, error) {
	v := r.base("Service Report", job, company)
	v.Notes = job.Notes
	v.Usage = job.MaterialUsage
	for _, cp := range job.Checkpoints {
		cv := checkpointView{
			Code:             cp.Code,
			Area:             cp.Area,
			PestType:         cp.PestType,
			Severity:         string(cp.Severity),
			InfestationLevel: string(cp.InfestationLevel),
			ActionPriority:   string(cp.ActionPriority),
			Notes:            cp.Notes,
			TasksTotal:       len(cp.Tasks),
			TasksDone:        len(cp.Tasks) - cp.IncompleteTasks(),
			Treated:          cp.IsTreated,
		}
		if cp.ScanStart != nil && cp.ScanEnd != nil {
			cv.ScanWindow = cp.ScanStart.Format(domain.TimeLayout) + " - " + cp.ScanEnd.Format(domain.TimeLayout)
		}
		v.Checkpoints = append(v.Checkpoints, cv)
	}
	return r.execute("report.html", v, company)
}

func (r *Renderer) base(title string, job *domain.JobCard, company Company) documentView {
	return documentView{
		Lang:    r.lang,
		Title:   title,
		Date:    r.now().Format(domain.DateLayout),
		Company: company,
		Job:     job,
	}
}

func (r *Renderer) execute(name string, v documentView, company Company) (string, error) {
	tmpl, err := r.templates.Clone()
	if err != nil {
		return "", fmt.Errorf("failed to clone templates: %w", err)
	}
	money := NewMoney(company.CurrencySymbol)
	tmpl.Funcs(template.FuncMap{"money": money.Format})

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func lineViews(items []domain.QuoteLineItem) []lineView {
	out := make([]lineView, len(items))
	for i, li := range items {
		out[i] = lineView{
			Name:        li.Name,
			Description: li.Description,
			Qty:         li.Qty,
			UnitPrice:   li.UnitPrice,
			Total:       li.Total,
		}
	}
	return out
}

func serviceTitles(ids []string, services []domain.ServiceOffering) []string {
	byID := make(map[string]domain.ServiceOffering, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s.Icon.Glyph()+" "+s.Title)
			continue
		}
		out = append(out, id)
	}
	return out
}
