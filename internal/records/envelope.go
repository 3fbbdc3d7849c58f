// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package records

import "errors"

// Envelope is the uniform response body of every operation.
type Envelope struct {
	Success    bool     `json:"success"`
	Data       any      `json:"data,omitempty"`
	Error      string   `json:"error,omitempty"`
	Code       string   `json:"code,omitempty"`
	Count      *int     `json:"count,omitempty"`
	HasMore    *bool    `json:"hasMore,omitempty"`
	NextCursor *string  `json:"nextCursor,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OK wraps a successful result.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// List wraps a page of records. data replaces res.Records when non-nil,
// e.g. for simplified output.
func List(res *ListResult, data any) Envelope {
	if data == nil {
		data = res.Records
	}
	count, more, next := res.Count, res.HasMore, res.NextCursor
	env := Envelope{Success: true, Data: data, Count: &count, HasMore: &more}
	if next != "" {
		env.NextCursor = &next
	}
	return env
}

// Fail wraps an error.
func Fail(err error) Envelope {
	var (
		oe *OpError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return Envelope{
			Error:    ErrInvalid.Error(),
			Code:     CodeValidation,
			Errors:   ve.Result.Errors,
			Warnings: ve.Result.Warnings,
		}
	case errors.As(err, &oe):
		return Envelope{Error: oe.Message, Code: oe.Code}
	}
	return Envelope{Error: err.Error()}
}
