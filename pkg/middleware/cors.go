package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSOptions describes the browser surface of the dashboard API: reads,
// revenue posts and roster replacement with JSON bodies. No cookies or auth
// headers are involved, so credentials stay off and "*" is answered with a
// literal wildcard rather than a reflected origin.
func CORSOptions(allowedOrigins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
}

// CORS wraps handlers with the dashboard's cross-origin policy
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.New(CORSOptions(allowedOrigins)).Handler
}
