// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	dcrerrors "github.com/stacklok/dcrgate/pkg/errors"
)

// Operation labels.
const (
	OperationCreate = "create"
	OperationPatch  = "patch"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationRenew  = "renew_secret"
)

// Result labels.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// Metrics counts registration operations by outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics registers the registration counters with registry. A nil
// registry uses the default registerer. Registering twice reuses the
// existing collector.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dcr_operations_total",
		Help: "Dynamic client registration operations by result",
	}, []string{"operation", "result"})

	if err := registry.Register(operations); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		operations = existing
	}
	return &Metrics{operations: operations}, nil
}

// Observe records the outcome of one operation. A nil Metrics is a no-op.
func (m *Metrics) Observe(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case dcrerrors.IsConcurrentModification(err):
		return ResultConflict
	}
	if _, ok := AsDCRError(err); ok {
		return ResultRejected
	}
	return ResultError
}
