package validator

import (
	"errors"
	"fmt"
	"strings"

	"stayops/pkg/logger"
	"stayops/pkg/model"
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

// EventRequest is the reservation-event hook payload.
type EventRequest struct {
	Event string `json:"event" validate:"required,oneof=verification check_in check_out"`
}

// RenderRequest is the preview payload for the message delivery worker.
type RenderRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,mongodb"`
	Content       string `json:"content" validate:"required,max=5000"`
}

type MessagingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewMessagingValidator(log *logger.Logger) *MessagingValidator {
	return &MessagingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *MessagingValidator) ValidateEvent(req *EventRequest) (model.TriggerEvent, error) {
	req.Event = strings.ToLower(strings.TrimSpace(req.Event))

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return "", v.translateValidationErrors(validationErrs)
		}
		return "", err
	}

	return model.TriggerEvent(req.Event), nil
}

func (v *MessagingValidator) ValidateRender(req *RenderRequest) error {
	req.Content = sanitizer.NormalizeFreeText(req.Content)

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *MessagingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
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
