package middleware

import (
	"net/http"
	"time"

	"go-storefront/internal/metrics"
	"go-storefront/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// Observability attaches a request-scoped zap logger to the user context,
// echoes X-Request-ID and records HTTP metrics by route template.
func Observability(base *zap.Logger, m *metrics.Metrics) fiber.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	prop := otel.GetTextMapPropagator()

	return func(c *fiber.Ctx) error {
		start := time.Now()

		ctx := prop.Extract(c.UserContext(), propagation.HeaderCarrier(http.Header(c.GetReqHeaders())))
		sc := trace.SpanContextFromContext(ctx)

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		fields := []zap.Field{zap.String("request_id", rid)}
		if sc.IsValid() {
			fields = append(fields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
		reqLog := base.With(fields...)
		c.SetUserContext(logger.WithContext(ctx, reqLog))

		err := c.Next()
		if err != nil {
			// let the app's error handler write the response before we read the status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		elapsed := time.Since(start)
		m.ObserveHTTP(c.Method(), route, status, elapsed)

		log := reqLog.Info
		if status >= fiber.StatusInternalServerError {
			log = reqLog.Error
		}
		log("http request",
			zap.String("method", c.Method()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		)
		return nil
	}
}
