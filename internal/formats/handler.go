package formats

import (
	"fmt"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// AnswerResult is the outcome of grading one submission. IsCorrect stays nil
// when the participant did not actually answer (timeout or empty selection).
type AnswerResult struct {
	Answered          bool
	IsCorrect         *bool
	SelectedOptionIDs []uint
	Payload           map[string]interface{}
}

// Submission carries the raw client input into a format handler. Handlers
// must treat every field as untrusted.
type Submission struct {
	OptionIDs []uint
}

// Handler implements one question format. Adding a format means implementing
// this interface and registering it at startup; the gameplay flow never
// switches on format codes directly.
type Handler interface {
	// Code identifies the format this handler serves
	Code() models.FormatCode

	// QuestionContext builds the render payload served to the participant.
	// It must never leak correctness flags. The token keeps per-participant
	// option shuffling stable across re-renders.
	QuestionContext(question *models.Question, token string) (map[string]interface{}, error)

	// Grade evaluates a submission against the question. Forged or stale
	// inputs are discarded, not errored.
	Grade(question *models.Question, submission Submission) (*AnswerResult, error)

	// Persist converts a graded result into the audit rows stored alongside
	// the attempt. Formats with nothing to audit return an empty slice.
	Persist(attempt *models.QuestionAttempt, result *AnswerResult) []models.TestAnswer

	// ReviewContext builds the per-question block of the final result view
	ReviewContext(question *models.Question, attempt *models.QuestionAttempt) (map[string]interface{}, error)
}

// Registry maps format codes to handlers. It is built once at startup and
// never mutated afterwards, so lookups need no locking.
type Registry struct {
	handlers map[models.FormatCode]Handler
	fallback Handler
}

// NewRegistry builds a registry from the given handlers. The handler for
// models.FormatTest doubles as the fallback for unknown codes.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	if len(handlers) == 0 {
		return nil, fmt.Errorf("at least one format handler is required")
	}

	byCode := make(map[models.FormatCode]Handler, len(handlers))
	for _, handler := range handlers {
		code := handler.Code()
		if _, exists := byCode[code]; exists {
			return nil, fmt.Errorf("duplicate handler for format %q", code)
		}
		byCode[code] = handler
	}

	fallback, ok := byCode[models.FormatTest]
	if !ok {
		return nil, fmt.Errorf("registry requires a handler for format %q", models.FormatTest)
	}

	return &Registry{handlers: byCode, fallback: fallback}, nil
}

// Resolve returns the handler for a format code, falling back to the test
// handler for unknown codes.
func (r *Registry) Resolve(code models.FormatCode) Handler {
	if handler, ok := r.handlers[code]; ok {
		return handler
	}
	return r.fallback
}

// Codes lists the registered format codes
func (r *Registry) Codes() []models.FormatCode {
	codes := make([]models.FormatCode, 0, len(r.handlers))
	for code := range r.handlers {
		codes = append(codes, code)
	}
	return codes
}
