package notifier

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecipient   = errors.New("no recipient")
	ErrNotSubscribed = errors.New("recipient not subscribed")
)

// FetchError reports a ValueSource that could not be reached or answered
// with something that is not a value.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "fetch latest value: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a sink call that failed after valid input.
// Status is the collaborator's HTTP status when there was one.
type DeliveryError struct {
	Status int
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("deliver notification (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("deliver notification: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// AsDelivery keeps ErrNoRecipient and existing delivery errors as they are and
// wraps anything else.
func AsDelivery(err error) error {
	if err == nil || errors.Is(err, ErrNoRecipient) {
		return err
	}
	var delivery *DeliveryError
	if errors.As(err, &delivery) {
		return err
	}
	return &DeliveryError{Err: err}
}
