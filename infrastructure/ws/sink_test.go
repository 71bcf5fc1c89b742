package ws

import (
	"chat-wire/domain"
	"chat-wire/domain/event"
	"chat-wire/errors"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSink_Consume_Hands_The_Event_To_The_Writer(t *testing.T) {
	req := require.New(t)
	sink := NewSink(4)

	delivered := event.MessageDelivered{Message: domain.Message{Text: "hi"}}
	req.NoError(sink.Consume(context.Background(), delivered))

	req.Equal(delivered, <-sink.Events())
}

func TestSink_Full_Buffer_Is_Backpressure_Not_Blocking(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)

	// Given a full buffer
	req.NoError(sink.Consume(context.Background(), event.RosterChanged{}))

	// When one more event arrives
	err := sink.Consume(context.Background(), event.RosterChanged{})

	// Then the fan-out is told instead of being blocked
	req.ErrorIs(err, errors.ErrSinkBackpressure)
}

func TestSink_Closed_Sink_Reports_Itself_Dead(t *testing.T) {
	req := require.New(t)
	sink := NewSink(4)

	sink.Close()
	err := sink.Consume(context.Background(), event.RosterChanged{})

	req.ErrorIs(err, errors.ErrSinkClosed)
}

func TestSink_Close_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	sink := NewSink(4)

	sink.Close()
	sink.Close()

	req.ErrorIs(sink.Consume(context.Background(), event.RosterChanged{}), errors.ErrSinkClosed)
}
