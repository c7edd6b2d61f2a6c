package discussion

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/ema-council/core/discussion"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	sessionCounter, _ = meter.Int64Counter("discussion.sessions",
		metric.WithDescription("Discussions started, by mode and outcome"))
	eventCounter, _ = meter.Int64Counter("discussion.events",
		metric.WithDescription("Events dispatched by the router, by kind"))
)
