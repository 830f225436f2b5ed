// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
)

const (
	// DefaultMaxResponseSize caps documents fetched on behalf of clients (1MB).
	DefaultMaxResponseSize = 1024 * 1024

	// DefaultErrorPreviewSize is the maximum size of error body preview in HTTPError.
	DefaultErrorPreviewSize = 1024

	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON = "application/json"
)

// GetOption configures GetJSON.
type GetOption func(*getOptions)

type getOptions struct {
	maxResponseSize int64
	anyContentType  bool
}

// WithMaxResponseSize rejects bodies larger than size bytes.
func WithMaxResponseSize(size int64) GetOption {
	return func(o *getOptions) {
		o.maxResponseSize = size
	}
}

// WithoutContentTypeValidation accepts any Content-Type. Sector identifier
// documents are frequently served as text/plain.
func WithoutContentTypeValidation() GetOption {
	return func(o *getOptions) {
		o.anyContentType = true
	}
}

// GetJSON fetches a client-supplied URL and decodes the JSON body into T.
// Non-200 responses yield an *HTTPError.
func GetJSON[T any](ctx context.Context, client HTTPClient, requestURL string, opts ...GetOption) (T, error) {
	var out T
	o := &getOptions{maxResponseSize: DefaultMaxResponseSize}
	for _, opt := range opts {
		opt(o)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return out, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := client.Do(req)
	if err != nil {
		return out, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// One extra byte tells an oversized body apart from one of exactly the limit.
	body, err := io.ReadAll(io.LimitReader(resp.Body, o.maxResponseSize+1))
	if err != nil {
		return out, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return out, newHTTPError(requestURL, resp.StatusCode, body)
	}
	if int64(len(body)) > o.maxResponseSize {
		return out, fmt.Errorf("response body exceeds %d bytes", o.maxResponseSize)
	}

	if !o.anyContentType {
		mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if mediaType != ContentTypeJSON {
			return out, fmt.Errorf("unexpected content type: %s", resp.Header.Get("Content-Type"))
		}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return out, nil
}
