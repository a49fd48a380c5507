package fuzzy

import "errors"

// Error kinds (spec §7). process()/predict() surface these through their
// return values; Engine methods that look up a variable/term by name
// return nil/false rather than an error, matching spec §7's "Not found"
// kind.
var (
	ErrInvalidArgument   = errors.New("fuzzy: invalid argument")
	ErrResourceExhausted = errors.New("fuzzy: resource exhausted")
	ErrNotFound          = errors.New("fuzzy: not found")
	ErrIllegalState      = errors.New("fuzzy: illegal state")
	ErrPersistence       = errors.New("fuzzy: persistence error")
)
