package domain

import (
	"errors"
	"fmt"
)

// ErrEngineUnavailable signals that the search engine call failed or the
// engine returned a response we could not use.
var ErrEngineUnavailable = errors.New("search engine unavailable")

// Code identifies which validation rule a search request violated.
type Code string

// Request validation codes, one per rule, in the order the rules run.
const (
	CodeMissingQuery          Code = "missing_query"
	CodeInvalidSize           Code = "invalid_size"
	CodeSizeOutOfRange        Code = "size_out_of_range"
	CodeInvalidFrom           Code = "invalid_from"
	CodeFromNegative          Code = "from_negative"
	CodeInvalidSort           Code = "invalid_sort"
	CodeInvalidOrder          Code = "invalid_order"
	CodeFacetsNotObject       Code = "facets_not_object"
	CodeUnknownFacet          Code = "unknown_facet"
	CodeInvalidFacetSizeType  Code = "invalid_facet_size_type"
	CodeInvalidIntervalType   Code = "invalid_interval_type"
	CodeInvalidIntervalValue  Code = "invalid_interval_value"
	CodeFiltersNotObject      Code = "filters_not_object"
	CodeUnknownFilter         Code = "unknown_filter"
	CodeMissingFilterTerms    Code = "missing_filter_terms"
	CodeFilterTermsNotArray   Code = "filter_terms_not_array"
	CodeFilterTermsBadElement Code = "filter_terms_bad_element"
	CodeFilterOptsNotObject   Code = "filter_opts_not_object"
)

// RequestError is a client request validation failure (HTTP 400).
// Message strings are kept byte-for-byte compatible with the legacy API,
// quirks included, because existing clients match on them.
type RequestError struct {
	Code    Code
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// NewRequestError builds a RequestError with a formatted message.
func NewRequestError(code Code, format string, args ...any) *RequestError {
	return &RequestError{Code: code, Message: fmt.Sprintf(format, args...)}
}
