package utils

import (
	"errors"
	"fmt"
)

var (
	ErrDataValidation       = errors.New("invalid player record")
	ErrDuplicatePlayer      = errors.New("duplicate player identifier")
	ErrInvalidConfiguration = errors.New("invalid rule configuration")
	ErrInvalidInput         = errors.New("invalid optimizer input")
	ErrInfeasible           = errors.New("no feasible squad under constraints")
	ErrNoValidFormation     = errors.New("no valid formation for squad")
	ErrTimeout              = errors.New("optimization budget exhausted")
	ErrNotFound             = errors.New("resource not found")
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewAppError(code string, message string, details ...string) *AppError {
	err := &AppError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeDuplicatePlayer  = "DUPLICATE_PLAYER"
	ErrCodeConfiguration    = "INVALID_CONFIGURATION"
	ErrCodeInfeasible       = "INFEASIBLE_SQUAD"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeNoValidFormation = "NO_VALID_FORMATION"
	ErrCodeTimeout          = "OPTIMIZATION_TIMEOUT"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
)

// CodeFor maps a core error to its API error code.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrDataValidation):
		return ErrCodeValidation
	case errors.Is(err, ErrDuplicatePlayer):
		return ErrCodeDuplicatePlayer
	case errors.Is(err, ErrInvalidConfiguration):
		return ErrCodeConfiguration
	case errors.Is(err, ErrInfeasible):
		return ErrCodeInfeasible
	case errors.Is(err, ErrInvalidInput):
		return ErrCodeInvalidInput
	case errors.Is(err, ErrNoValidFormation):
		return ErrCodeNoValidFormation
	case errors.Is(err, ErrTimeout):
		return ErrCodeTimeout
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	default:
		return ErrCodeInternal
	}
}
