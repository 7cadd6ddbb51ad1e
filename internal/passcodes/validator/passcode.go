package validator

import (
	"errors"
	"fmt"
	"strings"

	"stayops/pkg/logger"
	"stayops/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RecordCodeRequest is the operator's manual-code submission.
type RecordCodeRequest struct {
	Code string `json:"code" validate:"required,numeric,min=4,max=8"`
}

type PasscodeValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPasscodeValidator(log *logger.Logger) *PasscodeValidator {
	return &PasscodeValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateRecordCode cleans the submitted code to keypad digits and checks
// its shape. Returns the sanitized code on success.
func (v *PasscodeValidator) ValidateRecordCode(req *RecordCodeRequest) (string, error) {
	req.Code = sanitizer.NormalizeAccessCode(req.Code)

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return "", v.translateValidationErrors(validationErrs)
		}
		return "", err
	}

	return req.Code, nil
}

func (v *PasscodeValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "numeric":
			message = fmt.Sprintf("%s must contain digits only", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
