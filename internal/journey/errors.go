package journey

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// OperationFailure is a simulated, expected failure of a stage: bad
// credentials, a timed out query, a declined payment and so on. The journey
// ends silently when it sees one.
type OperationFailure struct {
	Service string
	Reason  string
	cause   error
}

// NewOperationFailure records the stack at the point the stage gave up.
func NewOperationFailure(service, reason string) *OperationFailure {
	return &OperationFailure{Service: service, Reason: reason, cause: pkgerrors.New(reason)}
}

func (e *OperationFailure) Error() string { return e.Reason }

func (e *OperationFailure) Unwrap() error { return e.cause }

// CustomerComplaint is raised when a user was charged but never got their
// confirmation. It is the one outcome the surrounding system must act on.
type CustomerComplaint struct {
	Reason  string
	UserID  string
	OrderID string
	cause   error
}

// NewCustomerComplaint records the stack at the point notification failed.
func NewCustomerComplaint(reason, userID, orderID string) *CustomerComplaint {
	return &CustomerComplaint{Reason: reason, UserID: userID, OrderID: orderID, cause: pkgerrors.New(reason)}
}

func (e *CustomerComplaint) Error() string { return e.Reason }

func (e *CustomerComplaint) Unwrap() error { return e.cause }

// Notice is the terminal message printed for a complaint.
func (e *CustomerComplaint) Notice() string {
	return fmt.Sprintf("User %s complained, charged but did not receive tickets", e.UserID)
}

// IsSimulated reports whether err is an expected simulated outcome rather than
// an infrastructure problem such as a sink write failure.
func IsSimulated(err error) bool {
	var op *OperationFailure
	var cc *CustomerComplaint
	return errors.As(err, &op) || errors.As(err, &cc)
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// stackTrace renders err the way a runtime would print an uncaught error:
// the message followed by the frames where it was created.
func stackTrace(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		return err.Error()
	}
	return fmt.Sprintf("Error: %s%+v", err.Error(), st.StackTrace())
}
