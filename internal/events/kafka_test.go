package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := &KafkaPublisher{writer: w, timeout: time.Second}

	e := New(PaymentCaptured, "65f0c1", map[string]string{"paymentId": "pay_1"})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "65f0c1", string(msg.Key))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "payment.captured", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded["id"])
	assert.Equal(t, "payment.captured", decoded["type"])
	assert.Equal(t, "pay_1", decoded["data"].(map[string]any)["paymentId"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &mockWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{writer: w, timeout: time.Second}

	err := p.Publish(context.Background(), New(OrderCreated, "o1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.created")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &mockWriter{}
	p := &KafkaPublisher{writer: w, timeout: time.Second}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), New(OrderCreated, "o1", nil)))
	assert.NoError(t, p.Close())
}

func TestNew_AssignsIdentity(t *testing.T) {
	a := New(OrderStatusChanged, "o1", nil)
	b := New(OrderStatusChanged, "o1", nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
}
