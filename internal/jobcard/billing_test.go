package jobcard

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/internal/events"
	"github.com/cuongbtq/jobcard-service/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStock(t *testing.T, h *harness) domain.InventoryItem {
	t.Helper()
	item, err := h.ledger.Save(context.Background(), domain.InventoryItem{
		ID:            "inv-1",
		Name:          "Fipronil Gel",
		Category:      "Gel",
		Unit:          "g",
		CostPerUnit:   2,
		StockLevel:    20,
		MinStockLevel: 18,
		BatchNumber:   "B-100",
	})
	require.NoError(t, err)
	return item
}

func TestService_QuoteLines(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)
	seedStock(t, h)

	_, err := h.svc.AddLineItem(ctx, job.ID, LineItemInput{Name: "Spray", Qty: 0, UnitPrice: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := h.svc.AddLineItem(ctx, job.ID, LineItemInput{Name: "Callout", Qty: 1, UnitPrice: 100})
	require.NoError(t, err)
	callout := got.Quote.LineItems[0]

	got, err = h.svc.AddLineItemFromInventory(ctx, job.ID, "inv-1", 4)
	require.NoError(t, err)
	require.Len(t, got.Quote.LineItems, 2)
	gel := got.Quote.LineItems[1]
	assert.Equal(t, "Fipronil Gel", gel.Name)
	assert.Equal(t, "inv-1", gel.InventoryItemID)
	assert.InDelta(t, 3, gel.UnitPrice, 1e-9)
	assert.InDelta(t, 12, gel.Total, 1e-9)
	assert.InDelta(t, 112, got.Quote.Subtotal, 1e-9)
	assert.InDelta(t, 128.8, got.Quote.Total, 1e-9)

	stock, err := h.ledger.Get("inv-1")
	require.NoError(t, err)
	assert.InDelta(t, 20, stock.StockLevel, 1e-9)

	_, err = h.svc.AddLineItemFromInventory(ctx, job.ID, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrInventoryItemNotFound)

	got, err = h.svc.RemoveLineItem(ctx, job.ID, callout.ID)
	require.NoError(t, err)
	require.Len(t, got.Quote.LineItems, 1)
	assert.InDelta(t, 12, got.Quote.Subtotal, 1e-9)

	_, err = h.svc.RemoveLineItem(ctx, job.ID, callout.ID)
	assert.ErrorIs(t, err, domain.ErrLineItemNotFound)
}

func TestService_UpdateQuoteTerms(t *testing.T) {
	tests := []struct {
		name        string
		in          QuoteTermsInput
		wantErr     bool
		wantTotal   float64
		wantDeposit float64
	}{
		{
			name:        "percentage deposit",
			in:          QuoteTermsInput{DepositType: ptr(domain.DepositPercentage), DepositValue: ptr(50.0)},
			wantTotal:   230,
			wantDeposit: 115,
		},
		{
			name:        "fixed deposit",
			in:          QuoteTermsInput{DepositType: ptr(domain.DepositFixed), DepositValue: ptr(50.0)},
			wantTotal:   230,
			wantDeposit: 50,
		},
		{
			name:      "zero vat",
			in:        QuoteTermsInput{VATRate: ptr(0.0)},
			wantTotal: 200,
		},
		{name: "vat as percent", in: QuoteTermsInput{VATRate: ptr(15.0)}, wantErr: true},
		{name: "unknown deposit type", in: QuoteTermsInput{DepositType: ptr(domain.DepositType("Half"))}, wantErr: true},
		{name: "percentage over 100", in: QuoteTermsInput{DepositType: ptr(domain.DepositPercentage), DepositValue: ptr(150.0)}, wantErr: true},
		{name: "infinite deposit", in: QuoteTermsInput{DepositType: ptr(domain.DepositFixed), DepositValue: ptr(math.Inf(1))}, wantErr: true},
		{name: "NaN vat", in: QuoteTermsInput{VATRate: ptr(math.NaN())}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			ctx := context.Background()
			job := h.createJob(t)
			_, err := h.svc.AddLineItem(ctx, job.ID, LineItemInput{Name: "Treatment", Qty: 2, UnitPrice: 100})
			require.NoError(t, err)

			got, err := h.svc.UpdateQuoteTerms(ctx, job.ID, tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantTotal, got.Quote.Total, 1e-9)

			dep, err := h.svc.Deposit(ctx, job.ID)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantDeposit, dep.Amount, 1e-9)
			assert.InDelta(t, tt.wantTotal-tt.wantDeposit, dep.BalanceDue, 1e-9)
			assert.False(t, dep.Paid)
		})
	}
}

func TestService_UpdateInvoiceNotes(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)
	_, err := h.svc.AddLineItem(ctx, job.ID, LineItemInput{Name: "Treatment", Qty: 2, UnitPrice: 100})
	require.NoError(t, err)

	_, err = h.svc.UpdateInvoiceNotes(ctx, operator, job.ID, "Thanks")
	assert.ErrorIs(t, err, domain.ErrFeatureLocked)

	h.schedule(t, job.ID)
	got, err := h.svc.UpdateInvoiceNotes(ctx, operator, job.ID, "Thanks")
	require.NoError(t, err)
	require.NotNil(t, got.Invoice)
	assert.Equal(t, "INV-2405-7", got.Invoice.Number)
	assert.Equal(t, "2024-05-01", got.Invoice.Date)
	assert.Equal(t, "2024-05-08", got.Invoice.DueDate)
	assert.InDelta(t, 230, got.Invoice.Total, 1e-9)
	assert.Equal(t, "Thanks", got.Invoice.Notes)

	h.advance(48 * time.Hour)
	got, err = h.svc.UpdateInvoiceNotes(ctx, operator, job.ID, "Paid in full")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", got.Invoice.Date)
	assert.Equal(t, "Paid in full", got.Invoice.Notes)
}

func TestService_SetDepositPaid(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)

	got, err := h.svc.SetDepositPaid(ctx, operator, job.ID, true)
	require.NoError(t, err)
	assert.True(t, got.DepositPaid)
	history := len(got.History)

	got, err = h.svc.SetDepositPaid(ctx, operator, job.ID, true)
	require.NoError(t, err)
	assert.Len(t, got.History, history)
}

func TestService_RecordUsage(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)
	cp := addCheckpoint(t, h, job.ID, "Kitchen")
	item := seedStock(t, h)
	h.schedule(t, job.ID)

	got, err := h.svc.RecordUsage(ctx, operator, job.ID, domain.UsageInput{
		InventoryItemID:   item.ID,
		QtyUsed:           5,
		ApplicationMethod: "Gel bait",
		TargetPest:        "Roach",
		CheckpointID:      cp.ID,
	})
	require.NoError(t, err)
	require.Len(t, got.MaterialUsage, 1)
	usage := got.MaterialUsage[0]
	assert.InDelta(t, 10, usage.Cost, 1e-9)
	assert.Equal(t, "B-100", usage.BatchNumber)
	assert.Equal(t, "Fipronil Gel", usage.ItemName)
	assert.Equal(t, operator.FullName, usage.RecordedBy)

	stock, err := h.ledger.Get(item.ID)
	require.NoError(t, err)
	assert.InDelta(t, 15, stock.StockLevel, 1e-9)

	low := h.pub.ofType(events.TypeStockLow)
	require.Len(t, low, 1)
	var payload events.StockLow
	require.NoError(t, low[0].DecodePayload(&payload))
	assert.Equal(t, item.ID, payload.InventoryItemID)
	assert.InDelta(t, 15, payload.StockLevel, 1e-9)

	item.CostPerUnit = 3
	_, err = h.ledger.Save(ctx, item)
	require.NoError(t, err)
	after, err := h.svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10, after.MaterialUsage[0].Cost, 1e-9)

	rows := h.svc.UsageRows(ctx)
	require.Len(t, rows, 1)
	assert.Equal(t, job.RefNumber, rows[0].JobRef)
	assert.Equal(t, "Jane Mokoena", rows[0].Client)
}

func TestService_RecordUsage_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		jobID   string
		in      domain.UsageInput
		wantErr error
	}{
		{name: "zero quantity", in: domain.UsageInput{InventoryItemID: "inv-1"}, wantErr: domain.ErrValidation},
		{name: "unknown item", in: domain.UsageInput{InventoryItemID: "missing", QtyUsed: 1}, wantErr: domain.ErrInventoryItemNotFound},
		{name: "unknown checkpoint", in: domain.UsageInput{InventoryItemID: "inv-1", QtyUsed: 1, CheckpointID: "missing"}, wantErr: domain.ErrCheckpointNotFound},
		{name: "unknown job", jobID: "missing", in: domain.UsageInput{InventoryItemID: "inv-1", QtyUsed: 1}, wantErr: domain.ErrJobNotFound},
		{name: "infinite quantity", in: domain.UsageInput{InventoryItemID: "inv-1", QtyUsed: math.Inf(1)}, wantErr: domain.ErrValidation},
		{name: "NaN quantity", in: domain.UsageInput{InventoryItemID: "inv-1", QtyUsed: math.NaN()}, wantErr: domain.ErrValidation},
		{name: "cost overflows", in: domain.UsageInput{InventoryItemID: "inv-1", QtyUsed: 1e308}, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			job := h.createJob(t)
			seedStock(t, h)
			h.schedule(t, job.ID)

			jobID := job.ID
			if tt.jobID != "" {
				jobID = tt.jobID
			}
			_, err := h.svc.RecordUsage(context.Background(), operator, jobID, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)

			stock, err := h.ledger.Get("inv-1")
			require.NoError(t, err)
			assert.InDelta(t, 20, stock.StockLevel, 1e-9)
		})
	}
}

type racingInventory struct {
	*inventory.Ledger
	onDecrement func()
}

func (r *racingInventory) Decrement(ctx context.Context, id string, qty float64) (domain.InventoryItem, error) {
	item, err := r.Ledger.Decrement(ctx, id, qty)
	r.onDecrement()
	return item, err
}

func TestService_RecordUsage_JobDeletedMidway(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)
	seedStock(t, h)
	h.schedule(t, job.ID)

	h.svc.inventory = &racingInventory{Ledger: h.ledger, onDecrement: func() {
		require.NoError(t, h.svc.DeleteJob(ctx, job.ID))
	}}

	_, err := h.svc.RecordUsage(ctx, operator, job.ID, domain.UsageInput{InventoryItemID: "inv-1", QtyUsed: 5})
	assert.ErrorIs(t, err, domain.ErrJobNotFound)

	stock, err := h.ledger.Get("inv-1")
	require.NoError(t, err)
	assert.InDelta(t, 20, stock.StockLevel, 1e-9)
	assert.Empty(t, h.pub.ofType(events.TypeStockLow))
}

func TestService_NonFiniteQuoteAmounts(t *testing.T) {
	tests := []struct {
		name  string
		lines []LineItemInput
	}{
		{name: "line total overflows", lines: []LineItemInput{{Name: "x", Qty: 1e200, UnitPrice: 1e200}}},
		{name: "infinite quantity", lines: []LineItemInput{{Name: "x", Qty: math.Inf(1), UnitPrice: 1}}},
		{name: "NaN price", lines: []LineItemInput{{Name: "x", Qty: 1, UnitPrice: math.NaN()}}},
		{name: "subtotal overflows", lines: []LineItemInput{
			{Name: "a", Qty: 1, UnitPrice: 1e308},
			{Name: "b", Qty: 1, UnitPrice: 1e308},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			ctx := context.Background()
			job := h.createJob(t)

			var err error
			for _, line := range tt.lines {
				_, err = h.svc.AddLineItem(ctx, job.ID, line)
			}
			assert.ErrorIs(t, err, domain.ErrValidation)

			got, err := h.svc.GetJob(ctx, job.ID)
			require.NoError(t, err)
			assert.Len(t, got.Quote.LineItems, len(tt.lines)-1)
			assert.False(t, math.IsInf(got.Quote.Total, 0))

			page, _ := h.svc.ListJobs(ctx, JobFilter{})
			assert.Len(t, page, 1)

			_, err = h.svc.PublicView(ctx, job.ID)
			assert.NoError(t, err)
		})
	}
}

func TestService_RecordPayment(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)
	in := PaymentInput{Method: domain.PaymentEFT, Amount: 230, Reference: "JOB-2405-7"}

	_, err := h.svc.RecordPayment(ctx, domain.Actor{FullName: "Sipho"}, job.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.svc.RecordPayment(ctx, operator, job.ID, in)
	assert.ErrorIs(t, err, domain.ErrFeatureLocked)

	h.schedule(t, job.ID)

	_, err = h.svc.RecordPayment(ctx, operator, job.ID, PaymentInput{Method: "Cheque", Amount: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := h.svc.RecordPayment(ctx, operator, job.ID, in)
	require.NoError(t, err)
	require.NotNil(t, got.PaymentRecord)
	assert.Equal(t, domain.PaymentEFT, got.PaymentRecord.Method)
	assert.Equal(t, operator.FullName, got.PaymentRecord.RecordedBy)
	assert.True(t, got.PaymentRecord.Date.Equal(fixedNow))

	admin := domain.Actor{FullName: "Owner", Permissions: []domain.Permission{domain.PermissionAdmin}}
	got, err = h.svc.RecordPayment(ctx, admin, job.ID, PaymentInput{Method: domain.PaymentCash, Amount: 200})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCash, got.PaymentRecord.Method)
	assert.InDelta(t, 200, got.PaymentRecord.Amount, 1e-9)

	evts := h.pub.ofType(events.TypePaymentRecorded)
	require.Len(t, evts, 2)
	var payload events.PaymentRecorded
	require.NoError(t, evts[0].DecodePayload(&payload))
	assert.Equal(t, "EFT", payload.Method)
	assert.Equal(t, "Jane Mokoena", payload.Client)
}

func TestService_AttachCertificate(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)

	got, err := h.svc.AttachCertificate(ctx, operator, job.ID, "coc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://files.example.com/coc.pdf"}, got.Certificates)

	_, err = h.svc.AttachCertificate(ctx, operator, "missing", "coc.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
	assert.Len(t, h.uploader.files, 1)
}
