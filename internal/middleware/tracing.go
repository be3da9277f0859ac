// AngelaMos | 2026
// tracing.go

package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

// Tracing continues an upstream W3C trace when one is present and opens a
// server span for the request. The span is renamed to the matched route
// once routing has finished.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(
			r.Context(),
			propagation.HeaderCarrier(r.Header),
		)

		ctx, span := core.StartSpan(ctx, r.Method+" "+r.URL.Path,
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))

		span.SetName(r.Method + " " + routePattern(r))
	})
}
