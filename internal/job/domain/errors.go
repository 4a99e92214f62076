package domain

import "errors"

var (
	ErrJobNotFound    = errors.New("job_not_found")
	ErrInvalidJobType = errors.New("invalid_job_type")
)
