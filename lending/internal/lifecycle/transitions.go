package lifecycle

import (
	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/kafka"
)

var transitions = map[model.RequestState][]model.RequestState{
	model.StatePending:  {model.StateAccepted, model.StateRejected},
	model.StateAccepted: {model.StateActive},
	model.StateActive:   {model.StateCompleted, model.StateDisputed},
}

func CanTransition(from, to model.RequestState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkTransition explains why from -> to is refused, or returns nil.
func checkTransition(from, to model.RequestState) error {
	switch {
	case CanTransition(from, to):
		return nil
	case from == model.StateCompleted && to == model.StateCompleted:
		return errs.ErrAlreadyCompleted
	case from.Terminal():
		return errs.ErrTerminalState
	}
	return errs.ErrInvalidTransition
}

// CheckDates validates a loan period against today. The end must be at least
// one whole day after the start and the start cannot lie in the past.
func CheckDates(start, end, today model.Date) error {
	if start.IsZero() || end.IsZero() {
		return errs.ErrInvalidDateRange
	}
	if end.Before(start.AddDays(1)) || start.Before(today) {
		return errs.ErrInvalidDateRange
	}
	return nil
}

// started reports whether the loan period of r has begun on today.
func started(r model.BorrowRequest, today model.Date) bool {
	return !r.StartDate.After(today)
}

func eventType(to model.RequestState) kafka.EventType {
	switch to {
	case model.StateAccepted:
		return kafka.EventRequestAccepted
	case model.StateRejected:
		return kafka.EventRequestRejected
	case model.StateActive:
		return kafka.EventLoanStarted
	case model.StateCompleted:
		return kafka.EventLoanCompleted
	case model.StateDisputed:
		return kafka.EventLoanDisputed
	}
	return kafka.EventRequestCreated
}
