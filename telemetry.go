package typegraph

import (
	"context"

	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/otel"
)

// SetupTelemetry installs the in-process event bus and an OpenTelemetry
// subscriber exporting spans for compiles and operation executions over OTLP
// gRPC. An empty endpoint installs the bus without an exporter. The returned
// func flushes and shuts the exporter down.
func SetupTelemetry(endpoint, service string) (func(context.Context) error, error) {
	eventbus.Use(eventbus.New())
	return otel.Setup(endpoint, service)
}
