// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package handlers provides the HTTP layer of the registration server.
//
// Every domain is served under /{domain}/oidc:
//   - POST /register (RFC 7591 client registration)
//   - GET, PUT, PATCH and DELETE /register/{client_id} (RFC 7592 client
//     configuration, authenticated with the registration access token)
//   - POST /register/{client_id}/renew_secret
//   - GET /.well-known/openid-configuration
//   - GET /.well-known/jwks.json
//
// The Handler struct coordinates all handlers and provides route registration methods
// for integrating with standard Go HTTP servers.
package handlers
