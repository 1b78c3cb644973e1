// Package services holds the issue lifecycle, locality resolution, auth
// gateway and chat assistant logic behind the HTTP controllers.
package services

import (
	"fmt"
	"net/http"
)

// DomainError is an error with an HTTP status and a message safe to show
// to clients.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func domainError(status int, code, message string, err error) *DomainError {
	return &DomainError{Status: status, Code: code, Message: message, Err: err}
}

func validationError(message string) *DomainError {
	return domainError(http.StatusBadRequest, "validation", message, nil)
}

func conflictError(message string) *DomainError {
	return domainError(http.StatusBadRequest, "conflict", message, nil)
}

func unauthorizedError(message string) *DomainError {
	return domainError(http.StatusUnauthorized, "unauthorized", message, nil)
}

func forbiddenError(message string) *DomainError {
	return domainError(http.StatusForbidden, "forbidden", message, nil)
}

func notFoundError(message string) *DomainError {
	return domainError(http.StatusNotFound, "not_found", message, nil)
}

func upstreamError(message string, err error) *DomainError {
	return domainError(http.StatusInternalServerError, "upstream", message, err)
}

func internalError(message string, err error) *DomainError {
	return domainError(http.StatusInternalServerError, "internal", message, err)
}
