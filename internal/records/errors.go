// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package records

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dacolabs/records/internal/remote"
	"github.com/dacolabs/records/internal/schema"
	"github.com/dacolabs/records/internal/validate"
)

// Op names a record service operation that talks to the remote platform.
type Op string

// Operations.
const (
	OpSchemaAnalysis Op = "schema analysis"
	OpQuery          Op = "query"
	OpRetrieve       Op = "retrieve"
	OpCreate         Op = "create"
	OpUpdate         Op = "update"
	OpDelete         Op = "delete"
)

// Default error codes, used when the platform does not supply one.
const (
	CodeSchemaAnalysis   = schema.CodeAnalysisFailed
	CodeQuery            = "DATABASE_QUERY_ERROR"
	CodeRetrieve         = "PAGE_RETRIEVE_ERROR"
	CodeCreate           = "PAGE_CREATE_ERROR"
	CodeUpdate           = "PAGE_UPDATE_ERROR"
	CodeDelete           = "PAGE_DELETE_ERROR"
	CodeValidation       = "VALIDATION_ERROR"
	CodePropertyNotFound = "PROPERTY_NOT_FOUND"
	CodeNotFound         = "NOT_FOUND"
)

// Sentinel errors for errors.Is.
var (
	ErrSchemaAnalysis    = errors.New("schema analysis failed")
	ErrQuery             = errors.New("query failed")
	ErrRetrieve          = errors.New("retrieve failed")
	ErrCreate            = errors.New("create failed")
	ErrUpdate            = errors.New("update failed")
	ErrDelete            = errors.New("delete failed")
	ErrInvalid           = errors.New("invalid properties")
	ErrUnknownCollection = errors.New("unknown collection")
)

var opDefaults = map[Op]struct {
	code     string
	sentinel error
}{
	OpSchemaAnalysis: {CodeSchemaAnalysis, ErrSchemaAnalysis},
	OpQuery:          {CodeQuery, ErrQuery},
	OpRetrieve:       {CodeRetrieve, ErrRetrieve},
	OpCreate:         {CodeCreate, ErrCreate},
	OpUpdate:         {CodeUpdate, ErrUpdate},
	OpDelete:         {CodeDelete, ErrDelete},
}

// OpError is a failed remote operation. Message and Code carry the
// platform's own values when it supplied them.
type OpError struct {
	Op      Op
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap exposes both the operation sentinel and the cause.
func (e *OpError) Unwrap() []error {
	errs := []error{opDefaults[e.Op].sentinel}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newOpError(op Op, err error) *OpError {
	oe := &OpError{
		Op:      op,
		Code:    opDefaults[op].code,
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}

	var (
		re *remote.Error
		ae *schema.AnalysisError
	)
	switch {
	case errors.As(err, &re):
		oe.Message = re.Message
		if re.Code != "" {
			oe.Code = re.Code
		}
		if re.Status >= http.StatusBadRequest && re.Status < http.StatusInternalServerError {
			oe.Status = re.Status
		}
	case errors.As(err, &ae):
		oe.Message = ae.Message
		oe.Code = ae.Code
	}
	return oe
}

// ValidationError rejects a write payload before it reaches the platform.
type ValidationError struct {
	Result validate.Result
}

func (e *ValidationError) Error() string {
	if len(e.Result.Errors) == 0 {
		return ErrInvalid.Error()
	}
	return fmt.Sprintf("%v: %s", ErrInvalid, strings.Join(e.Result.Errors, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(problems ...string) *ValidationError {
	return &ValidationError{Result: validate.Result{Valid: false, Errors: problems, Warnings: []string{}}}
}

// StatusOf maps an error from this package to an HTTP status.
func StatusOf(err error) int {
	var (
		oe *OpError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &oe):
		return oe.Status
	case errors.Is(err, ErrUnknownCollection):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
