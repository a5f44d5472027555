package stat

import "errors"

var (
	ErrNegativePoints = errors.New("point amount must not be negative")
	ErrUnknownStat    = errors.New("unknown stat")
	ErrDuplicateStat  = errors.New("stat already defined")
	ErrSelfLink       = errors.New("stat cannot be linked to itself")
	ErrAlreadyLinked  = errors.New("stats already linked")
)
