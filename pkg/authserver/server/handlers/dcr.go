// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stacklok/dcrgate/pkg/authserver/server/registration"
)

// maxDCRBodySize is the maximum allowed size for DCR request bodies (64KB).
// This prevents DoS attacks via extremely large payloads while being generous
// enough for legitimate requests with multiple redirect URIs.
const maxDCRBodySize = 64 * 1024

// RegisterClientHandler handles POST /{domain}/oidc/register requests
// (RFC 7591 Section 3).
func (h *Handler) RegisterClientHandler(w http.ResponseWriter, req *http.Request) {
	dcrReq, ok := decodeDCRRequest(w, req)
	if !ok {
		return
	}

	reg, err := h.service.Create(req.Context(), domainFrom(req.Context()), dcrReq, basePath(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeClientResponse(w, http.StatusCreated, reg)
}

// ReadClientHandler handles GET /{domain}/oidc/register/{client_id} requests
// (RFC 7592 Section 2.1).
func (h *Handler) ReadClientHandler(w http.ResponseWriter, req *http.Request) {
	writeClientResponse(w, http.StatusOK, h.service.Describe(clientFrom(req.Context())))
}

// UpdateClientHandler handles PUT /{domain}/oidc/register/{client_id}
// requests (RFC 7592 Section 2.2).
func (h *Handler) UpdateClientHandler(w http.ResponseWriter, req *http.Request) {
	dcrReq, ok := decodeDCRRequest(w, req)
	if !ok {
		return
	}

	ctx := req.Context()
	reg, err := h.service.Update(ctx, domainFrom(ctx), clientFrom(ctx), dcrReq, basePath(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeClientResponse(w, http.StatusOK, reg)
}

// PatchClientHandler handles PATCH /{domain}/oidc/register/{client_id}
// requests. Only the metadata present in the body is changed.
func (h *Handler) PatchClientHandler(w http.ResponseWriter, req *http.Request) {
	dcrReq, ok := decodeDCRRequest(w, req)
	if !ok {
		return
	}

	ctx := req.Context()
	reg, err := h.service.Patch(ctx, domainFrom(ctx), clientFrom(ctx), dcrReq, basePath(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeClientResponse(w, http.StatusOK, reg)
}

// DeleteClientHandler handles DELETE /{domain}/oidc/register/{client_id}
// requests (RFC 7592 Section 2.3).
func (h *Handler) DeleteClientHandler(w http.ResponseWriter, req *http.Request) {
	if _, err := h.service.Delete(req.Context(), clientFrom(req.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusNoContent)
}

// RenewSecretHandler handles POST /{domain}/oidc/register/{client_id}/renew_secret
// requests. The response carries the new secret and registration access token.
func (h *Handler) RenewSecretHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	reg, err := h.service.RenewSecret(ctx, domainFrom(ctx), clientFrom(ctx), basePath(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeClientResponse(w, http.StatusOK, reg)
}

// decodeDCRRequest reads a client metadata document from req. It writes the
// error response itself and reports false when the body is unusable.
func decodeDCRRequest(w http.ResponseWriter, req *http.Request) (*registration.DCRRequest, bool) {
	// Limit request body size to prevent DoS attacks
	req.Body = http.MaxBytesReader(w, req.Body, maxDCRBodySize)

	// Validate Content-Type header (RFC 7591 requires application/json)
	contentType := req.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		writeDCRError(w, http.StatusBadRequest, &registration.DCRError{
			Code:        registration.DCRErrorInvalidClientMetadata,
			Description: "Content-Type must be application/json",
		})
		return nil, false
	}

	var dcrReq registration.DCRRequest
	if err := json.NewDecoder(req.Body).Decode(&dcrReq); err != nil {
		writeDCRError(w, http.StatusBadRequest, &registration.DCRError{
			Code:        registration.DCRErrorInvalidClientMetadata,
			Description: "invalid JSON request body",
		})
		return nil, false
	}
	return &dcrReq, true
}
