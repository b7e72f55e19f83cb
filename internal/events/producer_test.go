package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoBrokersIsNop(t *testing.T) {
	p := New(nil)
	_, ok := p.(Nop)
	require.True(t, ok)
	assert.NoError(t, p.PublishEvent(context.Background(), TopicUsers, "k", NewEvent("user_registered", "1", nil)))
	assert.NoError(t, p.Close())
}

func TestNew_WithBrokers(t *testing.T) {
	p := New([]string{"localhost:9092"})
	prod, ok := p.(*Producer)
	require.True(t, ok)
	assert.Equal(t, "localhost:9092", prod.writer.Addr.String())
	assert.NoError(t, p.Close())
}

func TestPublishEvent_MarshalError(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	defer p.Close()

	err := p.PublishEvent(context.Background(), TopicOrders, "k", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")
}

func TestEventEnvelope(t *testing.T) {
	ev := NewEvent("order_paid", "o1", map[string]any{"total": 12.5})
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "order_paid", decoded["type"])
	assert.Equal(t, "o1", decoded["id"])
	assert.NotZero(t, decoded["timestamp"])
}
