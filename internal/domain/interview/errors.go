package interview

import "errors"

// Interview domain errors
var (
	ErrInterviewNotFound = errors.New("interview not found")
	ErrInvalidStatus     = errors.New("invalid interview status")
	ErrSlotNotOffered    = errors.New("slot is not in the currently offered set")
	ErrUnknownSender     = errors.New("sender is not a registered candidate or interviewer")
)
