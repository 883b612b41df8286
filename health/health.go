package health

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Checker reports whether the service can serve requests.
type Checker func() error

// Handler returns ok while check passes.
func Handler(check Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(err.Error()))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}
}

// StartHealthEndpoint starts /health endpoint on provided port that returns ok on invocation
func StartHealthEndpoint(port uint16, check Checker) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", Handler(check))
	log.Info().Msgf("started /health endpoint on port %d", port)
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
	log.Error().Err(err).Msg("health endpoint stopped")
}
