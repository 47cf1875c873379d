package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	// Game task errors
	ErrGameTaskNotFound       = errors.New("game task not found")
	ErrGameTaskNotPublished   = errors.New("game task is not published")
	ErrGameTaskHasNoQuestions = errors.New("game task has no questions")

	// Session errors
	ErrSessionNotFound        = errors.New("session not found")
	ErrSessionNotJoinable     = errors.New("session is not accepting participants")
	ErrSessionAlreadyFinished = errors.New("session is already finished")
	ErrPendingSessionLimit    = errors.New("too many pending sessions for this game task")
	ErrPinGenerationFailed    = errors.New("could not generate a unique pin code")

	// Participant errors
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrQuestionAlreadyAnswered = errors.New("question already answered")

	// Result errors
	ErrResultNotAvailable = errors.New("result is not available until play finishes")
)

// ===== TYPED ERRORS =====

// PermissionError describes a denied action on a resource
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError describes a violated domain rule
type BusinessRuleError struct {
	Message string
	Rule    string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(message, rule string) *BusinessRuleError {
	return &BusinessRuleError{Message: message, Rule: rule}
}
