// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error type shared by the screens and the JSON
infrastructure endpoints.

An [AppError] pairs a stable code with a message that is safe to show. Backend
and storage causes ride along in Cause for the logs; nothing renders them.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes used across the app.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError is a classified failure with a client-safe message.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError is one invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches on code and message, so a sentinel still matches after it has
// been wrapped with fmt.Errorf("%w").
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

func newError(code string, status int, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Cause: cause}
}

// # 4xx

// NotFound reports a missing resource.
func NotFound(resource string) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, resource+" not found", nil)
}

// Unauthorized reports a missing or rejected session or credential.
func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message, nil)
}

// ValidationError reports bad input, optionally per field.
func ValidationError(message string, details ...FieldError) *AppError {
	err := newError(CodeValidation, http.StatusBadRequest, message, nil)
	err.Details = details
	return err
}

// RateLimited reports an exhausted client budget.
func RateLimited(retryAfterSeconds int) *AppError {
	return newError(CodeRateLimited, http.StatusTooManyRequests,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds), nil)
}

// # 5xx

// Internal hides an unexpected failure behind a generic message.
func Internal(cause error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, "An unexpected error occurred", cause)
}

// ServiceUnavailable reports an unreachable dependency.
func ServiceUnavailable(message string, cause error) *AppError {
	return newError(CodeServiceUnavailable, http.StatusServiceUnavailable, message, cause)
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var target *AppError
	if errors.As(err, &target) {
		return target
	}
	return nil
}
