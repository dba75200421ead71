package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/stackdiff/internal/domain/activity"
	"github.com/rpggio/stackdiff/internal/domain/changes"
	"github.com/rpggio/stackdiff/internal/domain/version"
	"github.com/rpggio/stackdiff/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, changes.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, version.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check required arguments such as drive_id"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "not found"}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: err.Error()}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error(), RecoveryHint: "Retry later"}
	}
}
