package errors

import "errors"

var (
	ErrTemplateNotFound  = errors.New("message template not found")
	ErrScheduleNotFound  = errors.New("scheduled message not found")
	ErrDuplicateSchedule = errors.New("message already scheduled for this template and guest")
	ErrInvalidID         = errors.New("invalid id format")
	ErrUnknownTrigger    = errors.New("unknown trigger event")
)
