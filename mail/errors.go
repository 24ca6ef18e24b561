package mail

import (
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// ErrDelivery is matched by every *DeliveryError via errors.Is.
var ErrDelivery = errors.New("mail delivery failed")

// Stages at which delivery can fail.
const (
	StageAddress = "address"
	StageSend    = "send"
)

// DeliveryError reports that a message could not be handed to the server.
type DeliveryError struct {
	Recipient string
	Stage     string
	Err       error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deliver to %q (%s): %v", e.Recipient, e.Stage, e.Err)
	}
	return fmt.Sprintf("deliver to %q (%s)", e.Recipient, e.Stage)
}

// Unwrap returns the underlying error.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDelivery) report true.
func (e *DeliveryError) Is(target error) bool {
	return target == ErrDelivery
}

// Temporary reports whether the server signalled a transient failure.
func (e *DeliveryError) Temporary() bool {
	var sendErr *gomail.SendError
	if errors.As(e.Err, &sendErr) {
		return sendErr.IsTemp()
	}
	return false
}
