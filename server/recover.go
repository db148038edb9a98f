package server

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/jonwraymond/rolegate/auth"
	"github.com/jonwraymond/rolegate/observe"
)

// recoverer converts a panic in any downstream handler into a JSON 500.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func recoverer(logger observe.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				logger.Error(r.Context(), "handler panicked",
					observe.F("path", r.URL.Path),
					observe.F("panic", fmt.Sprint(p)),
					observe.F("stack", string(debug.Stack())),
				)
				auth.WriteError(w, &auth.HTTPError{
					Status:  http.StatusInternalServerError,
					Message: "Something went wrong!",
					Detail:  fmt.Sprint(p),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
