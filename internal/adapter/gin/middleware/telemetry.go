package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const meterName = "user-registry-service/gin"

var redactedHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
}

// RedactHeaders flattens h into a single-valued map, masking credentials.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if redactedHeaders[strings.ToLower(k)] {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// Telemetry annotates the server span with request and response headers and
// the response status, and counts requests by outcome. It expects otelgin to run first.
func Telemetry(mp metric.MeterProvider) (gin.HandlerFunc, error) {
	meter := mp.Meter(meterName)

	total, err := meter.Int64Counter("http_requests_total", metric.WithDescription("Total HTTP requests"))
	if err != nil {
		return nil, err
	}
	success, err := meter.Int64Counter("http_requests_success", metric.WithDescription("HTTP requests answered below 400"))
	if err != nil {
		return nil, err
	}
	fail, err := meter.Int64Counter("http_requests_fail", metric.WithDescription("HTTP requests answered with 400 or above"))
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if headers, err := json.Marshal(RedactHeaders(c.Request.Header)); err == nil {
			span.SetAttributes(attribute.String("request.http.headers", string(headers)))
		}

		c.Next()

		if headers, err := json.Marshal(RedactHeaders(c.Writer.Header())); err == nil {
			span.SetAttributes(attribute.String("response.http.headers", string(headers)))
		}
		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusBadRequest {
			span.SetStatus(otelcodes.Error, http.StatusText(status))
		}

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", c.Request.URL.Path),
			attribute.String("route", c.FullPath()),
		)
		ctx := c.Request.Context()
		total.Add(ctx, 1, attrs)
		if status >= http.StatusBadRequest {
			fail.Add(ctx, 1, attrs)
		} else {
			success.Add(ctx, 1, attrs)
		}
	}, nil
}
