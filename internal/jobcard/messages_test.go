package jobcard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cuongbtq/jobcard-service/internal/cache"
	"github.com/cuongbtq/jobcard-service/internal/docstore"
	"github.com/cuongbtq/jobcard-service/internal/documents"
	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/cuongbtq/jobcard-service/shared/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_PrepareMessage_QuoteProvisionsPortalUser(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)

	msg, err := h.svc.PrepareMessage(ctx, job.ID, documents.MessageQuote, documents.ChannelWhatsApp)
	require.NoError(t, err)
	assert.True(t, msg.PortalUserCreated)
	assert.True(t, strings.HasPrefix(msg.Link, "https://wa.me/27821234567?text="), msg.Link)
	assert.Contains(t, msg.Body, "PIN 1008")
	assert.Contains(t, msg.Body, "https://pest.example.co.za/?jobRef="+job.ID)

	again, err := h.svc.PrepareMessage(ctx, job.ID, documents.MessageQuote, documents.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, again.PortalUserCreated)
	assert.Contains(t, again.Body, "PIN 1008")
	assert.True(t, strings.HasPrefix(again.Link, "mailto:jane@example.com?subject="), again.Link)

	users, err := docstore.ListAs[domain.ClientUser](ctx, h.store, docstore.CollectionClientUsers)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "1008", users[0].PIN)
	assert.NotEmpty(t, users[0].ClientID)
}

func TestService_PrepareMessage(t *testing.T) {
	tests := []struct {
		name       string
		schedule   bool
		client     *domain.ClientDetails
		msgType    documents.MessageType
		channel    documents.Channel
		wantErr    error
		wantLink   string
		wantInBody string
	}{
		{
			name:    "booking before scheduling",
			msgType: documents.MessageBooking,
			channel: documents.ChannelSMS,
			wantErr: domain.ErrValidation,
		},
		{
			name:       "booking",
			schedule:   true,
			msgType:    documents.MessageBooking,
			channel:    documents.ChannelSMS,
			wantLink:   "sms:+27821234567?body=",
			wantInBody: "2024-05-02 at 09:00",
		},
		{
			name:       "invoice without materialized invoice",
			msgType:    documents.MessageInvoice,
			channel:    documents.ChannelEmail,
			wantLink:   "mailto:jane@example.com?subject=Invoice%20INV-2405-7",
			wantInBody: "Payment is due by 2024-05-08",
		},
		{
			name:    "sms without phone",
			client:  &domain.ClientDetails{Name: "Jane Mokoena"},
			msgType: documents.MessageReport,
			channel: documents.ChannelSMS,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown channel",
			msgType: documents.MessageReport,
			channel: "fax",
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			ctx := context.Background()
			job := h.createJob(t)
			if tt.schedule {
				h.schedule(t, job.ID)
			}
			if tt.client != nil {
				_, err := h.svc.UpdateJob(ctx, operator, job.ID, UpdateJobInput{Client: tt.client})
				require.NoError(t, err)
			}

			msg, err := h.svc.PrepareMessage(ctx, job.ID, tt.msgType, tt.channel)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(msg.Link, tt.wantLink), msg.Link)
			assert.Contains(t, msg.Body, tt.wantInBody)
			assert.False(t, msg.PortalUserCreated)
		})
	}
}

func TestService_RenderDocument(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.createJob(t)
	_, err := h.svc.AddLineItem(ctx, job.ID, LineItemInput{Name: "Treatment", Qty: 2, UnitPrice: 100})
	require.NoError(t, err)

	for _, kind := range []documents.Kind{documents.KindQuote, documents.KindInvoice, documents.KindReport} {
		t.Run(string(kind), func(t *testing.T) {
			html, err := h.svc.RenderDocument(ctx, job.ID, kind)
			require.NoError(t, err)
			assert.Contains(t, html, job.RefNumber)
		})
	}

	_, err = h.svc.RenderDocument(ctx, "missing", documents.KindQuote)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestService_PublicView(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	views := cache.NewJobViewCache(client, time.Minute, logger.NewNop())
	h := newHarnessWithViews(t, nil, views)
	ctx := context.Background()
	job := h.createJob(t)
	_, err := h.svc.AddCheckpoint(ctx, operator, job.ID, domain.CheckpointInput{Area: "Kitchen", PestType: "Roach"})
	require.NoError(t, err)

	view, err := h.svc.PublicView(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.RefNumber, view.RefNumber)
	assert.Equal(t, "Jane Mokoena", view.ClientName)
	require.Len(t, view.Checkpoints, 1)
	assert.Equal(t, "Kitchen", view.Checkpoints[0].Area)
	assert.True(t, mr.Exists("jobcard:public:"+job.ID))

	_, err = h.svc.AddLineItem(ctx, job.ID, LineItemInput{Name: "Treatment", Qty: 1, UnitPrice: 100})
	require.NoError(t, err)
	assert.False(t, mr.Exists("jobcard:public:"+job.ID))

	view, err = h.svc.PublicView(ctx, job.ID)
	require.NoError(t, err)
	assert.InDelta(t, 115, view.Total, 1e-9)

	_, err = h.svc.PublicView(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestService_PublicView_WithoutCache(t *testing.T) {
	h := newHarness(t, nil)
	job := h.createJob(t)

	view, err := h.svc.PublicView(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssessment, view.Status)
	assert.Equal(t, "Assessment", view.StatusLabel)
	assert.Empty(t, view.Checkpoints)
}
