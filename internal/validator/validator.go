package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes a single failed validation rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return strings.Join(messages, "; ")
}

// ToValidationErrors converts go-playground validation errors into our type
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	result := make(ValidationErrors, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		result = append(result, ValidationError{
			Field:   toSnakeCase(fieldErr.Field()),
			Message: messageForTag(fieldErr),
			Value:   fieldErr.Value(),
			Rule:    fieldErr.Tag(),
		})
	}
	return result
}

func messageForTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fieldErr.Param())
	case "nickname":
		return "must be 1-20 letters, digits, spaces or ._'- characters"
	case "pin_code":
		return "must be a 6 digit code"
	case "session_duration":
		return "must be between 10 seconds and 4 hours"
	default:
		return fmt.Sprintf("failed %s validation", fieldErr.Tag())
	}
}

var snakeCaseRe = regexp.MustCompile("([a-z0-9])([A-Z])")

func toSnakeCase(s string) string {
	return strings.ToLower(snakeCaseRe.ReplaceAllString(s, "${1}_${2}"))
}

// Validator wraps struct validation and business rule validation
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

// New creates a validator with all custom rules registered
func New() *Validator {
	validate := validator.New()
	registerCustomRules(validate)

	return &Validator{
		validate: validate,
		business: NewBusinessValidator(validate),
	}
}

// Validate runs struct tag validation and returns ValidationErrors on failure
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// GetBusinessValidator returns the business rule validator
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

var (
	pinCodeRe = regexp.MustCompile(`^[0-9]{6}$`)

	// Latin and Cyrillic letters (the Kazakh alphabet lives in the Cyrillic
	// block), digits, spaces and ._'-
	nicknameRe = regexp.MustCompile(`^[0-9A-Za-z\p{Cyrillic} ._'-]+$`)
)

func registerCustomRules(validate *validator.Validate) {
	// Nickname: 1-20 characters from the permitted set
	validate.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
		nickname := strings.TrimSpace(fl.Field().String())
		if nickname == "" || utf8.RuneCountInString(nickname) > 20 {
			return false
		}
		return nicknameRe.MatchString(nickname)
	})

	// Join code format
	validate.RegisterValidation("pin_code", func(fl validator.FieldLevel) bool {
		return pinCodeRe.MatchString(fl.Field().String())
	})

	// Whole-session allowance in seconds
	validate.RegisterValidation("session_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= 10 && duration <= 4*3600
	})
}
