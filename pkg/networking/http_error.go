// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"errors"
	"fmt"
)

// HTTPError is a non-200 response to an outbound fetch.
type HTTPError struct {
	StatusCode int
	URL        string

	// Body holds at most DefaultErrorPreviewSize bytes of the response.
	Body string
}

func newHTTPError(url string, status int, body []byte) *HTTPError {
	if len(body) > DefaultErrorPreviewSize {
		body = body[:DefaultErrorPreviewSize]
	}
	return &HTTPError{StatusCode: status, URL: url, Body: string(body)}
}

// Error keeps the body out of the message so third-party content never
// reaches client-facing error descriptions.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s returned status %d", e.URL, e.StatusCode)
}

// IsHTTPError reports whether err is an *HTTPError with statusCode, or any
// *HTTPError when statusCode is 0.
func IsHTTPError(err error, statusCode int) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return statusCode == 0 || httpErr.StatusCode == statusCode
}
