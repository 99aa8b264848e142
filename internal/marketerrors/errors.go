package marketerrors

import "errors"

// Error kinds. Every sentinel below unwraps to exactly one of these.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrState         = errors.New("invalid state")
	ErrConflict      = errors.New("conflict")
	ErrAuthorization = errors.New("not authorized")
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

// Repository-level errors
var (
	ErrAuctionNotFound  = newError(ErrNotFound, "auction not found")
	ErrNoBids           = newError(ErrNotFound, "no bids found for auction")
	ErrUserNotFound     = newError(ErrNotFound, "user not found")
	ErrQuestionNotFound = newError(ErrNotFound, "question not found")
	ErrWatchNotFound    = newError(ErrNotFound, "watchlist item not found")
	ErrAlreadyWatching  = newError(ErrConflict, "already watching this auction")
	ErrUserExists       = newError(ErrConflict, "username or email already registered")

	// ErrConcurrentUpdate is returned when an auction changed between read and write.
	ErrConcurrentUpdate = errors.New("auction was modified concurrently")
)

// business logic errors
var (
	ErrInvalidID        = newError(ErrValidation, "invalid id")
	ErrInvalidInput     = newError(ErrValidation, "invalid input")
	ErrInvalidBid       = newError(ErrValidation, "invalid bid")
	ErrBidTooLow        = newError(ErrValidation, "bid amount too low")
	ErrAuctionNotActive = newError(ErrState, "auction is not active")
	ErrAuctionEnded     = newError(ErrState, "auction has ended")
	ErrNotSeller        = newError(ErrAuthorization, "only the seller can answer questions")
)
