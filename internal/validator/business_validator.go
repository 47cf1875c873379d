package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator(validate *validator.Validate) *BusinessValidator {
	return &BusinessValidator{validate: validate}
}

// Validate validates struct tags for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSessionCreate validates session creation business rules
func (bv *BusinessValidator) ValidateSessionCreate(req *SessionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// A limited session needs a duration; a limitless one must not carry one
	if req.Limit == models.SessionLimited && req.Duration <= 0 {
		errors = append(errors, ValidationError{
			Field:   "duration",
			Message: "is required for limited sessions",
			Value:   req.Duration,
			Rule:    "business_logic",
		})
	}
	if req.Limit == models.SessionLimitless && req.Duration > 0 {
		errors = append(errors, ValidationError{
			Field:   "duration",
			Message: "must be empty for limitless sessions",
			Value:   req.Duration,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateStatusTransition validates session status transitions.
// The lifecycle only moves forward; repeating the current state is treated as
// idempotent by the caller, not validated here.
func (bv *BusinessValidator) ValidateStatusTransition(currentStatus, newStatus models.SessionStatus) ValidationErrors {
	var errors ValidationErrors

	allowedTransitions := map[models.SessionStatus][]models.SessionStatus{
		models.SessionPending:  {models.SessionActive, models.SessionFinished},
		models.SessionActive:   {models.SessionFinished},
		models.SessionFinished: {}, // No transitions from finished
	}

	allowed := false
	for _, allowedStatus := range allowedTransitions[currentStatus] {
		if newStatus == allowedStatus {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", currentStatus, newStatus),
			Value:   newStatus,
			Rule:    "status_transition",
		})
	}

	return errors
}

// ValidateDeletePermission validates if a session can be deleted
func (bv *BusinessValidator) ValidateDeletePermission(status models.SessionStatus, participantCount int64) ValidationErrors {
	var errors ValidationErrors

	if status == models.SessionActive {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "cannot delete a running session",
			Value:   status,
			Rule:    "business_logic",
		})
	}

	if status == models.SessionFinished && participantCount > 0 {
		errors = append(errors, ValidationError{
			Field:   "participants",
			Message: "cannot delete a finished session with recorded results",
			Value:   participantCount,
			Rule:    "business_logic",
		})
	}

	return errors
}
