package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

// TimeoutMiddleware gives each request a deadline. Handlers stop cooperatively via
// context.Done(); when one gives up without writing a response the client gets a 503
// error body. A non-positive timeout disables the middleware.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{ResponseWriter: w}
			next.ServeHTTP(tw, r.WithContext(ctx))

			if !tw.written && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				WriteError(w, r, domain.ErrUnavailable("request timed out after "+timeout.String()))
			}
		})
	}
}

type timeoutWriter struct {
	http.ResponseWriter
	written bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.written = true
	return tw.ResponseWriter.Write(b)
}
