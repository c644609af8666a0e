package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_Unlocks(t *testing.T) {
	unlocked := map[JobStatus]bool{
		StatusAssessment:    false,
		StatusQuoteBuilder:  false,
		StatusQuoteSent:     false,
		StatusJobScheduled:  true,
		StatusJobInProgress: true,
		StatusJobReview:     true,
		StatusInvoiced:      true,
		StatusCompleted:     true,
		StatusCancelled:     false,
	}
	require.Len(t, unlocked, len(AllStatuses))

	for _, status := range AllStatuses {
		for _, feature := range AllFeatures {
			assert.Equal(t, unlocked[status], status.Unlocks(feature), "%s/%s", status, feature)
		}
	}
}

func TestJobStatus_Mappings(t *testing.T) {
	seen := map[string]bool{}
	for _, status := range AllStatuses {
		assert.NotEqual(t, "#94a3b8", status.Color(), "status %s has no color", status)
		assert.NotContains(t, status.Label(), "_")
		assert.False(t, seen[status.Color()], "duplicate color for %s", status)
		seen[status.Color()] = true
		assert.True(t, status.Valid())
	}
	assert.False(t, JobStatus("Archived").Valid())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    JobStatus
		wantErr bool
	}{
		{in: "Job_Scheduled", want: StatusJobScheduled},
		{in: "Job Scheduled", want: StatusJobScheduled},
		{in: "quote_sent", want: StatusQuoteSent},
		{in: " Completed ", want: StatusCompleted},
		{in: "Archived", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJobCard_CanAccess(t *testing.T) {
	job := &JobCard{Status: StatusQuoteSent}
	err := job.CanAccess(FeatureExecution)
	require.ErrorIs(t, err, ErrFeatureLocked)
	assert.Contains(t, err.Error(), "Quote Sent")

	job.SetStatus(time.Now(), StatusJobScheduled, "Thandi")
	assert.NoError(t, job.CanAccess(FeatureExecution))
	assert.NoError(t, job.CanAccess(FeatureInvoice))

	require.Len(t, job.History, 1)
	assert.Equal(t, "Status changed to Job_Scheduled", job.History[0].Action)
	assert.Equal(t, "Thandi", job.History[0].User)
}

func TestJobCard_Clone(t *testing.T) {
	started := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	job := &JobCard{
		ID:            "j1",
		Checkpoints:   []Checkpoint{{ID: "c1", Tasks: []Task{{ID: "t1"}}, ScanStart: &started, Photos: []string{"a.jpg"}}},
		Quote:         JobQuote{LineItems: []QuoteLineItem{{ID: "l1", Qty: 1}}},
		PaymentRecord: &PaymentRecord{Amount: 100},
	}
	clone := job.Clone()

	clone.Checkpoints[0].Tasks[0].Completed = true
	clone.Checkpoints = append(clone.Checkpoints, Checkpoint{ID: "c2"})
	*clone.Checkpoints[0].ScanStart = started.Add(time.Hour)
	clone.Checkpoints[0].Photos[0] = "b.jpg"
	clone.Quote.LineItems[0].Qty = 5
	clone.PaymentRecord.Amount = 1

	assert.False(t, job.Checkpoints[0].Tasks[0].Completed)
	assert.Len(t, job.Checkpoints, 1)
	assert.Equal(t, started, *job.Checkpoints[0].ScanStart)
	assert.Equal(t, "a.jpg", job.Checkpoints[0].Photos[0])
	assert.InDelta(t, 1, job.Quote.LineItems[0].Qty, 1e-9)
	assert.InDelta(t, 100, job.PaymentRecord.Amount, 1e-9)
}

func TestJobCard_CloneNonFinite(t *testing.T) {
	job := &JobCard{ID: "j1", Quote: JobQuote{Total: math.Inf(1)}}
	assert.NotPanics(t, func() { job.Clone() })
}

func TestJobCard_Normalize(t *testing.T) {
	job := &JobCard{Quote: JobQuote{VATRate: 0.15, LineItems: []QuoteLineItem{{Qty: 2, UnitPrice: 100}}}}
	job.Normalize()

	assert.Equal(t, StatusAssessment, job.Status)
	assert.NotNil(t, job.Checkpoints)
	assert.NotNil(t, job.MaterialUsage)
	assert.Equal(t, DepositNone, job.Quote.DepositType)
	assert.InDelta(t, 230, job.Quote.Total, 1e-9)
}

func TestActor_Can(t *testing.T) {
	assert.True(t, Actor{Permissions: []Permission{PermissionInvoicing}}.Can(PermissionInvoicing))
	assert.True(t, Actor{Permissions: []Permission{PermissionAdmin}}.Can(PermissionInvoicing))
	assert.False(t, Actor{Permissions: []Permission{PermissionInventory}}.Can(PermissionInvoicing))
	assert.False(t, Actor{}.Can(PermissionInvoicing))
}
