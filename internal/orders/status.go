package orders

import "fmt"

// Status represents the lifecycle state of an order. Literals are part of the
// wire contract and are case-sensitive.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusRank orders the forward path. Cancelled sits outside the ranking.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ParseStatus validates a status literal.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, raw)
	}
}

// IsValid checks if the status is a known literal.
func (s Status) IsValid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// IsTerminal reports whether the status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// InvalidTransitionError reports a disallowed edge in the transition table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("orders: invalid transition from %s to %s", e.From, e.To)
}

// AlreadyInStateError reports a request for the state the order is already in.
type AlreadyInStateError struct {
	Status Status
}

func (e *AlreadyInStateError) Error() string {
	return fmt.Sprintf("orders: order is already %s", e.Status)
}

// CanTransition validates an edge against the transition table. Both the
// generic status update and the dedicated deliver operation go through here;
// there is exactly one source of truth.
//
// Forward skips are legal: pending may move straight to shipped or delivered.
// Any non-terminal state may move to cancelled. Terminal states reject
// everything; re-requesting a terminal state yields AlreadyInStateError.
func CanTransition(from, to Status) error {
	if from.IsTerminal() {
		if to == from {
			return &AlreadyInStateError{Status: from}
		}
		return &InvalidTransitionError{From: from, To: to}
	}
	if to == StatusCancelled {
		return nil
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return &InvalidTransitionError{From: from, To: to}
	}
	toRank, ok := statusRank[to]
	if !ok || toRank <= fromRank {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
