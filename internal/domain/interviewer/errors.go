package interviewer

import "errors"

// Interviewer domain errors
var (
	ErrInterviewerNotFound = errors.New("interviewer not found")
	ErrNoneAvailable       = errors.New("no active interviewer available")
)
