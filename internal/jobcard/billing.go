package jobcard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/events"
	"github.com/cuongbtq/jobcard-service/internal/inventory"
)

// PaymentInput carries a captured payment
type PaymentInput struct {
	Method    domain.PaymentMethod
	Amount    float64
	Reference string
	Notes     string
}

// UpdateInvoiceNotes edits the invoice notes, materializing the invoice from the quote on first edit
func (s *Service) UpdateInvoiceNotes(ctx context.Context, actor domain.Actor, jobID, notes string) (*domain.JobCard, error) {
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		if err := job.CanAccess(domain.FeatureInvoice); err != nil {
			return err
		}
		now := s.now()
		if job.Invoice == nil {
			job.Invoice = domain.NewInvoice(domain.InvoiceNumber(job.RefNumber), job.Quote, now, s.settings.Company.PaymentTermsDays)
			job.AppendHistory(now, "Invoice "+job.Invoice.Number+" created", actor.FullName)
		}
		job.Invoice.Notes = notes
		return nil
	})
}

// SetDepositPaid flags the deposit as received
func (s *Service) SetDepositPaid(ctx context.Context, actor domain.Actor, jobID string, paid bool) (*domain.JobCard, error) {
	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		if job.DepositPaid == paid {
			return nil
		}
		job.DepositPaid = paid
		action := "Deposit marked as paid"
		if !paid {
			action = "Deposit marked as unpaid"
		}
		job.AppendHistory(s.now(), action, actor.FullName)
		return nil
	})
}

// RecordUsage decrements stock and appends an immutable usage record priced at the current cost.
// The decrement is returned to stock when the job cannot take the record.
func (s *Service) RecordUsage(ctx context.Context, actor domain.Actor, jobID string, in domain.UsageInput) (*domain.JobCard, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	current, err := s.lookup(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := current.CanAccess(domain.FeatureExecution); err != nil {
		return nil, err
	}
	if in.CheckpointID != "" && current.CheckpointIndex(in.CheckpointID) < 0 {
		return nil, fmt.Errorf("%q: %w", in.CheckpointID, domain.ErrCheckpointNotFound)
	}
	stocked, err := s.inventory.Get(in.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.UsageCost(stocked, in.QtyUsed); err != nil {
		return nil, err
	}

	item, stockErr := s.inventory.Decrement(ctx, in.InventoryItemID, in.QtyUsed)
	if stockErr != nil && item.ID == "" {
		return nil, stockErr
	}

	job, err := s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		if err := job.CanAccess(domain.FeatureExecution); err != nil {
			return err
		}
		if in.CheckpointID != "" && job.CheckpointIndex(in.CheckpointID) < 0 {
			return fmt.Errorf("%q: %w", in.CheckpointID, domain.ErrCheckpointNotFound)
		}
		now := s.now()
		usage := domain.NewMaterialUsage(s.newID(), item, in, now, actor.FullName)
		job.MaterialUsage = append(job.MaterialUsage, usage)
		job.AppendHistory(now, fmt.Sprintf("Used %g %s of %s", usage.QtyUsed, usage.Unit, usage.ItemName), actor.FullName)
		return nil
	})
	if job == nil {
		if _, restockErr := s.inventory.Restock(ctx, item.ID, in.QtyUsed); restockErr != nil {
			s.logger.Error("Failed to return unrecorded usage to stock",
				slog.String("item_id", item.ID),
				slog.Float64("qty", in.QtyUsed),
				slog.Any("error", restockErr),
			)
		}
		return nil, err
	}

	if item.IsLowStock() {
		s.publish(ctx, events.TypeStockLow, job, events.StockLow{
			InventoryItemID: item.ID,
			ItemName:        item.Name,
			Unit:            item.Unit,
			StockLevel:      item.StockLevel,
			MinStockLevel:   item.MinStockLevel,
		})
	}
	if err == nil {
		err = stockErr
	}
	return job, err
}

// RecordPayment captures the job's payment. A second payment replaces the first.
func (s *Service) RecordPayment(ctx context.Context, actor domain.Actor, jobID string, in PaymentInput) (*domain.JobCard, error) {
	if !actor.Can(domain.PermissionInvoicing) {
		return nil, fmt.Errorf("recording payments requires %s permission: %w", domain.PermissionInvoicing, domain.ErrForbidden)
	}

	record := domain.PaymentRecord{
		Method:     in.Method,
		Amount:     in.Amount,
		Reference:  strings.TrimSpace(in.Reference),
		Notes:      in.Notes,
		RecordedBy: actor.FullName,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	job, err := s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		if err := job.CanAccess(domain.FeatureInvoice); err != nil {
			return err
		}
		now := s.now()
		record.Date = now
		if job.PaymentRecord != nil {
			s.logger.Info("Replacing payment record",
				slog.String("job_id", job.ID),
				slog.Float64("previous_amount", job.PaymentRecord.Amount),
			)
		}
		job.PaymentRecord = &record
		job.AppendHistory(now, fmt.Sprintf("Payment recorded: %s %.2f", record.Method, record.Amount), actor.FullName)
		return nil
	})
	if job != nil {
		s.publish(ctx, events.TypePaymentRecorded, job, events.PaymentRecorded{
			Method:    string(record.Method),
			Amount:    record.Amount,
			Reference: record.Reference,
			Client:    job.Client.Name,
		})
	}
	return job, err
}

// AttachCertificate uploads a compliance certificate and links it to the job
func (s *Service) AttachCertificate(ctx context.Context, actor domain.Actor, jobID, filename string, body io.Reader) (*domain.JobCard, error) {
	if _, err := s.lookup(ctx, jobID); err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, filename, body)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, jobID, func(job *domain.JobCard) error {
		job.Certificates = append(job.Certificates, url)
		job.AppendHistory(s.now(), "Certificate attached: "+filename, actor.FullName)
		return nil
	})
}

// UsageRows lists every material usage across the working set, newest first, for export
func (s *Service) UsageRows(_ context.Context) []inventory.UsageRow {
	s.mu.RLock()
	var rows []inventory.UsageRow
	for _, job := range s.jobs {
		for _, u := range job.MaterialUsage {
			rows = append(rows, inventory.UsageRow{JobRef: job.RefNumber, Client: job.Client.Name, Usage: u})
		}
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Usage.Date.Equal(rows[j].Usage.Date) {
			return rows[i].Usage.Date.After(rows[j].Usage.Date)
		}
		return rows[i].Usage.ID < rows[j].Usage.ID
	})
	return rows
}
