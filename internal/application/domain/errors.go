package domain

import "errors"

var (
	ErrApplicationNotFound   = errors.New("application_not_found")
	ErrOperationNotSupported = errors.New("application_operation_not_supported")
	ErrUnknownType           = errors.New("unknown_application_type")
)
