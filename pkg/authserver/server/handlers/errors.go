// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stacklok/dcrgate/pkg/authserver/server/registration"
	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// writeServiceError maps an error from the registration service to a
// response.
func writeServiceError(w http.ResponseWriter, err error) {
	if dcrErr, ok := registration.AsDCRError(err); ok {
		writeDCRError(w, http.StatusBadRequest, dcrErr)
		return
	}

	switch {
	case dcrerrors.IsConcurrentModification(err):
		writeDCRError(w, http.StatusConflict, &registration.DCRError{
			Code:        registration.DCRErrorInvalidRequest,
			Description: "client was modified concurrently, retry the request",
		})
	case dcrerrors.IsNotFound(err):
		writeDCRError(w, http.StatusNotFound, &registration.DCRError{
			Code:        registration.DCRErrorInvalidRequest,
			Description: "client not found",
		})
	case dcrerrors.IsInvalidArgument(err):
		writeDCRError(w, http.StatusBadRequest, &registration.DCRError{
			Code:        registration.DCRErrorInvalidClientMetadata,
			Description: err.Error(),
		})
	default:
		if dcrerrors.IsSecretConfiguration(err) {
			logger.Errorw("client secret settings are misconfigured", "error", err)
		} else {
			logger.Errorw("registration request failed", "error", err)
		}
		writeDCRError(w, http.StatusInternalServerError, &registration.DCRError{
			Code:        registration.DCRErrorServerError,
			Description: "internal server error",
		})
	}
}

// writeUnauthorized writes an RFC 6750 invalid_token response.
func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	writeDCRError(w, http.StatusUnauthorized, &registration.DCRError{
		Code:        registration.DCRErrorInvalidToken,
		Description: description,
	})
}

// writeDCRError writes a DCR error response per RFC 7591 Section 3.2.2.
func writeDCRError(w http.ResponseWriter, statusCode int, dcrErr *registration.DCRError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(statusCode)
	// Encoding errors are not recoverable (headers already written), log for diagnostics
	if err := json.NewEncoder(w).Encode(dcrErr); err != nil {
		logger.Debugw("failed to encode DCR error response", "error", err)
	}
}

// writeClientResponse writes a client information response.
func writeClientResponse(w http.ResponseWriter, statusCode int, reg *registration.Registration) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(registration.NewResponse(reg)); err != nil {
		logger.Errorw("failed to encode DCR response", "error", err)
	}
}
