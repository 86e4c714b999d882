package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDoesNotBlockWhenInboxFull(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "t", 1, nil)

	require.NoError(t, p.Publish([]byte("1"), []byte("a")))
	require.ErrorIs(t, p.Publish([]byte("2"), []byte("b")), ErrInboxFull)
}

func TestPublishAfterClose(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "t", 4, nil)
	p.Close()
	p.Close()

	require.ErrorIs(t, p.Publish([]byte("1"), []byte("a")), ErrClosed)
}

func TestEventHeaders(t *testing.T) {
	hs := EventHeaders("OrderConfirmed", 1)
	require.Len(t, hs, 2)
	assert.Equal(t, HeaderEventType, hs[0].Key)
	assert.Equal(t, "OrderConfirmed", string(hs[0].Value))
	assert.Equal(t, "1", string(hs[1].Value))
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID int64 `json:"order_id"`
	}
	v, err := UnwrapPayload[payload](MustMarshal(payload{OrderID: 7}))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.OrderID)

	_, err = UnwrapPayload[payload]([]byte("{"))
	require.Error(t, err)
}
