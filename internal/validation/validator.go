// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package validation wraps go-playground/validator v10 behind a
// thread-safe singleton and translates its field errors into the API's
// VALIDATION_ERROR shape.
//
//	type ratingsBody struct {
//	    Ratings map[string]int `validate:"required,min=1"`
//	}
//
//	if verr := validation.ValidateStruct(&body); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed field with its validation tag.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// RequestValidationError collects the field errors of one request.
type RequestValidationError struct {
	fields []FieldError
}

// Fields returns the individual field errors.
func (ve *RequestValidationError) Fields() []FieldError {
	return ve.fields
}

// Error implements error with a combined message.
func (ve *RequestValidationError) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.fields))
	for i, f := range ve.fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// APIError is the wire shape of a validation failure. It mirrors
// models.APIError to avoid an import cycle.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts the collected field errors to the API error format.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.fields) == 0 {
		return &APIError{Code: "VALIDATION_ERROR", Message: "Validation failed"}
	}

	if len(ve.fields) == 1 {
		f := ve.fields[0]
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: f.Message,
			Details: map[string]interface{}{"field": f.Field, "tag": f.Tag},
		}
	}

	fields := make([]map[string]interface{}, len(ve.fields))
	messages := make([]string, len(ve.fields))
	for i, f := range ve.fields {
		fields[i] = map[string]interface{}{"field": f.Field, "tag": f.Tag, "message": f.Message}
		messages[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the singleton validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct. Returns nil on success.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{fields: []FieldError{
			{Field: "unknown", Tag: "unknown", Message: err.Error()},
		}}
	}

	fields := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{fields: fields}
}

var simpleTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"url":      "%s must be a valid URL",
	"datetime": "%s must be a valid date/time in RFC3339 format",
	"uuid":     "%s must be a valid UUID",
}

var paramTemplates = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"len":   "%s must have length %s",
}

func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if template, ok := simpleTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := paramTemplates[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind().String() == "string"
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
