package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrNoSeatsSelected  = errors.New("at least one seat must be selected")
	ErrNoActiveSchedule = errors.New("no schedule matches the selected date and time")
	ErrScheduleInPast   = errors.New("the selected schedule is in the past")
	ErrSeatBooked       = errors.New("seat is already booked")
	ErrUnknownSeat      = errors.New("seat does not exist in the selected theater")
	ErrUnknownTheater   = errors.New("theater is not showing this movie")
	ErrDuplicateSeat    = errors.New("seat is already part of the booking")
	ErrUserNotFound     = errors.New("current user could not be resolved")
	ErrBusy             = errors.New("another operation is in progress")
	ErrSessionClosed    = errors.New("booking session is already confirmed")
	ErrNothingToRetry   = errors.New("booking has no failed seats to retry")
)

// ErrorKind classifies failures so callers branch on the kind rather than on
// message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindTransient
	KindInvalid
	KindConflict
	KindPartialBooking
	KindTotalBooking
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	case KindPartialBooking:
		return "partial_booking"
	case KindTotalBooking:
		return "total_booking"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost *Error in the chain. Well-known
// sentinels are classified even when they were never wrapped in an *Error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrNoSeatsSelected),
		errors.Is(err, ErrNoActiveSchedule),
		errors.Is(err, ErrScheduleInPast),
		errors.Is(err, ErrUnknownSeat),
		errors.Is(err, ErrUnknownTheater),
		errors.Is(err, ErrNothingToRetry):
		return KindInvalid
	case errors.Is(err, ErrSeatBooked),
		errors.Is(err, ErrDuplicateSeat),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrSessionClosed):
		return KindConflict
	}

	return KindUnknown
}
