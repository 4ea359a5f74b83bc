package app

import (
	"fmt"
	"net/http"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func notFound(id string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", "Standard not found", map[string]string{"id": id})
}

func validationError(message string) *DomainError {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, nil)
}

func duplicateName(name string) *DomainError {
	return domainError(http.StatusConflict, "DUPLICATE_NAME", "A standard with this name already exists", map[string]string{"name": name})
}
