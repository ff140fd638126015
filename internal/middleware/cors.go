package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSHandler builds the CORS policy for the browser clients (instructor
// dashboard and student app). Origins come from CORS_ALLOWED_ORIGINS.
func CORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		// X-Total-Count backs the dashboard's paginated roster and
		// redemption tables.
		ExposedHeaders:   []string{"Link", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
