package round

import "errors"

// ErrRoundNotFound is returned when a table has no live round
var ErrRoundNotFound = errors.New("round not found")

var (
	errNilRound     = errors.New("input and round cannot be nil")
	errBlankTableID = errors.New("input and table ID cannot be empty")
)
