package response

import (
	"errors"
	"net/http"

	"github.com/gnx-solutions/interview-scheduler/internal/domain/candidate"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interview"
	"github.com/gnx-solutions/interview-scheduler/internal/domain/interviewer"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interview.ErrInterviewNotFound):
		NotFound(w, "Interview not found")
	case errors.Is(err, interview.ErrInvalidStatus):
		BadRequest(w, "Invalid interview status")
	case errors.Is(err, interview.ErrSlotNotOffered):
		BadRequest(w, "Slot is not currently offered")

	case errors.Is(err, candidate.ErrCandidateNotFound):
		NotFound(w, "Candidate not found")

	case errors.Is(err, interviewer.ErrInterviewerNotFound):
		NotFound(w, "Interviewer not found")
	case errors.Is(err, interviewer.ErrNoneAvailable):
		BadRequest(w, "No active interviewer available")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
