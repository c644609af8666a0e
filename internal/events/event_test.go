package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cuongbtq/jobcard-service/shared/logger"
	"github.com/cuongbtq/jobcard-service/shared/rabbitmq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	msgs []rabbitmq.Message
	err  error
}

func (c *captureSender) PublishWithRetry(_ context.Context, msg rabbitmq.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestNew_RoutingKey(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	evt, err := New("evt-1", TypeStockLow, "", "", StockLow{InventoryItemID: "inv-1", ItemName: "Gel", StockLevel: -2, MinStockLevel: 5}, now)
	require.NoError(t, err)

	assert.Equal(t, "jobcard.stock.low", evt.RoutingKey())

	var payload StockLow
	require.NoError(t, evt.DecodePayload(&payload))
	assert.Equal(t, "Gel", payload.ItemName)
	assert.InDelta(t, -2, payload.StockLevel, 1e-9)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"id":"e1","type":"job.created","jobId":"j1","occurredAt":"2024-05-01T09:00:00Z"}`},
		{name: "not json", body: `nope`, wantErr: true},
		{name: "missing id", body: `{"type":"job.created"}`, wantErr: true},
		{name: "missing type", body: `{"id":"e1"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := Decode([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TypeJobCreated, evt.Type)
		})
	}
}

func TestRabbitPublisher(t *testing.T) {
	evt, err := New("evt-2", TypePaymentRecorded, "job-1", "JOB-2405-12", PaymentRecorded{Method: "EFT", Amount: 230}, time.Now())
	require.NoError(t, err)

	t.Run("publishes json with routing key", func(t *testing.T) {
		sender := &captureSender{}
		pub := NewRabbitPublisher(sender, logger.NewNop())

		require.NoError(t, pub.Publish(context.Background(), evt))
		require.Len(t, sender.msgs, 1)

		msg := sender.msgs[0]
		assert.Equal(t, "jobcard.payment.recorded", msg.RoutingKey)
		assert.Equal(t, "evt-2", msg.MessageID)
		assert.Equal(t, "application/json", msg.ContentType)

		var decoded Event
		require.NoError(t, json.Unmarshal(msg.Body, &decoded))
		assert.Equal(t, "JOB-2405-12", decoded.RefNumber)
	})

	t.Run("wraps sender failure", func(t *testing.T) {
		pub := NewRabbitPublisher(&captureSender{err: rabbitmq.ErrNotConnected}, logger.NewNop())
		err := pub.Publish(context.Background(), evt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, rabbitmq.ErrNotConnected))
	})
}
