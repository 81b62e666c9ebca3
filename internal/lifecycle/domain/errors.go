package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not_found")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidReason    = errors.New("invalid_return_reason")
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrInvalidStatus    = errors.New("invalid_item_status")
	ErrInvalidEpisode   = errors.New("invalid_episode")
	ErrDuplicateEpisode = errors.New("duplicate_episode")
)

// QuantityExceededError is returned when a mutation would push
// used+returned past the approved quantity. It carries the full picture so
// callers can render a user-facing message.
type QuantityExceededError struct {
	Approved  int64 `json:"approved"`
	Used      int64 `json:"used"`
	Returned  int64 `json:"returned"`
	Attempted int64 `json:"attempted"`
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("quantity exceeded: approved=%d used=%d returned=%d attempted=%d",
		e.Approved, e.Used, e.Returned, e.Attempted)
}

// AsQuantityExceeded unwraps err into a QuantityExceededError if it is one.
func AsQuantityExceeded(err error) (*QuantityExceededError, bool) {
	var qe *QuantityExceededError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
