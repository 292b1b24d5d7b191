package webhook

import (
	"errors"
	"fmt"
	"time"

	"github.com/calmora/billing-webhooks/webhook/payload"
)

// DecodeError reports an event envelope that cannot be turned into an Event.
// An unsupported type is not a decode error; only malformed JSON or a
// missing required top-level field is.
type DecodeError struct {
	Field string
	Err   error
}

func (e DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decoding event: required field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("decoding event: %v", e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a raw provider payload into an Event.
// Required top-level fields are id, type and created; data.object is
// optional and stays loosely typed for the handlers to pick apart.
func Decode(data []byte) (Event, error) {
	envelope, err := payload.Parse(data)
	if err != nil {
		return Event{}, DecodeError{Err: err}
	}

	id, err := envelope.String("id")
	if err != nil {
		return Event{}, DecodeError{Field: "id", Err: err}
	}

	rawType, err := envelope.String("type")
	if err != nil {
		return Event{}, DecodeError{Field: "type", Err: err}
	}

	created, err := envelope.Int64("created")
	if err != nil {
		return Event{}, DecodeError{Field: "created", Err: err}
	}

	event := Event{
		ID:        id,
		Type:      ParseEventType(rawType),
		RawType:   rawType,
		CreatedAt: time.Unix(created, 0).UTC(),
		RequestID: envelope.StringOr("request", ""),
	}

	if livemode, err := envelope.Bool("livemode"); err == nil {
		event.Livemode = livemode
	}

	// data.object is where the resource snapshot lives; absent is fine
	// here, the handlers report what they actually need
	if dataObj, err := envelope.Object("data"); err == nil {
		if obj, err := dataObj.Object("object"); err == nil {
			event.Payload = obj
		}
	}
	if event.Payload == nil {
		event.Payload = payload.Object{}
	}

	return event, nil
}

// IsDecodeError reports whether err is a DecodeError.
func IsDecodeError(err error) bool {
	var decodeErr DecodeError
	return errors.As(err, &decodeErr)
}
