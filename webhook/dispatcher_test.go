package webhook

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRegister(t *testing.T) {
	t.Run("should reject the unsupported type", func(t *testing.T) {
		dispatcher := NewDispatcher(slog.Default())

		err := dispatcher.Register(TypeUnsupported, func(context.Context, Event) (string, error) {
			return "", nil
		})

		assert.Error(t, err)
	})

	t.Run("should reject a duplicate registration", func(t *testing.T) {
		dispatcher := NewDispatcher(slog.Default())
		handler := func(context.Context, Event) (string, error) { return "", nil }

		require.NoError(t, dispatcher.Register(TypeCustomerCreated, handler))
		err := dispatcher.Register(TypeCustomerCreated, handler)

		assert.Error(t, err)
	})
}

func TestDispatcherDispatch(t *testing.T) {
	event := Event{ID: "evt_1", Type: TypeCustomerCreated, RawType: "customer.created"}

	t.Run("should route to the registered handler", func(t *testing.T) {
		dispatcher := NewDispatcher(slog.Default())
		var got Event
		require.NoError(t, dispatcher.Register(TypeCustomerCreated, func(_ context.Context, e Event) (string, error) {
			got = e
			return "Customer registered", nil
		}))

		summary, err := dispatcher.Dispatch(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, "Customer registered", summary)
		assert.Equal(t, "evt_1", got.ID)
	})

	t.Run("should report an unregistered type as unsupported", func(t *testing.T) {
		dispatcher := NewDispatcher(slog.Default())

		_, err := dispatcher.Dispatch(context.Background(), event)

		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("should report an unsupported type", func(t *testing.T) {
		dispatcher := NewDispatcher(slog.Default())

		_, err := dispatcher.Dispatch(context.Background(), Event{ID: "evt_2", Type: TypeUnsupported, RawType: "payout.created"})

		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("should wrap handler failures with the event type", func(t *testing.T) {
		dispatcher := NewDispatcher(slog.Default())
		boom := errors.New("db down")
		require.NoError(t, dispatcher.Register(TypeCustomerCreated, func(context.Context, Event) (string, error) {
			return "", Transient(boom)
		}))

		_, err := dispatcher.Dispatch(context.Background(), event)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "customer.created")
	})
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(InvalidEventData(errors.New("missing customer"))))
	assert.True(t, IsTerminal(ErrUnsupportedType))
	assert.False(t, IsTerminal(Transient(errors.New("db down"))))
	assert.False(t, IsTerminal(errors.New("unclassified")))
}
