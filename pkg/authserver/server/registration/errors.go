// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"errors"
	"fmt"
)

// DCR error codes per RFC 7591 Section 3.2.2
const (
	// DCRErrorInvalidRedirectURI indicates that the value of one or more
	// redirect_uris is invalid.
	DCRErrorInvalidRedirectURI = "invalid_redirect_uri"

	// DCRErrorInvalidClientMetadata indicates that the value of one of the
	// client metadata fields is invalid and the server has rejected this request.
	DCRErrorInvalidClientMetadata = "invalid_client_metadata"

	// DCRErrorInvalidRequest is returned for malformed requests and writes
	// that lost a race with another update.
	DCRErrorInvalidRequest = "invalid_request"

	// DCRErrorInvalidToken is returned by RFC 7592 endpoints for a missing or
	// invalid registration access token.
	DCRErrorInvalidToken = "invalid_token"

	// DCRErrorAccessDenied is returned when registration is disabled on a domain.
	DCRErrorAccessDenied = "access_denied"

	// DCRErrorServerError is returned for unexpected failures.
	DCRErrorServerError = "server_error"
)

// DCRError represents an OAuth 2.0 Dynamic Client Registration error
// response per RFC 7591 Section 3.2.2.
type DCRError struct {
	// Code is a single ASCII error code from the defined set.
	Code string `json:"error"`

	// Description is a human-readable text providing additional information.
	Description string `json:"error_description,omitempty"`
}

// Error implements the error interface.
func (e *DCRError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// NewInvalidClientMetadata returns an invalid_client_metadata error.
func NewInvalidClientMetadata(format string, args ...any) *DCRError {
	return &DCRError{Code: DCRErrorInvalidClientMetadata, Description: fmt.Sprintf(format, args...)}
}

// NewInvalidRedirectURI returns an invalid_redirect_uri error.
func NewInvalidRedirectURI(format string, args ...any) *DCRError {
	return &DCRError{Code: DCRErrorInvalidRedirectURI, Description: fmt.Sprintf(format, args...)}
}

// AsDCRError extracts a *DCRError from err's chain.
func AsDCRError(err error) (*DCRError, bool) {
	var dcrErr *DCRError
	if errors.As(err, &dcrErr) {
		return dcrErr, true
	}
	return nil, false
}
