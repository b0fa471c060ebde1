package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the listed origins, or reflects any origin when the list is
// empty so browser extensions on arbitrary pages can call the service.
// Credentials are never allowed.
func CORS(allowedOrigins []string, traceHeader string) gin.HandlerFunc {
	headers := []string{"Origin", "Content-Type", "Authorization"}
	if traceHeader != "" {
		headers = append(headers, traceHeader)
	}

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  headers,
		ExposeHeaders: []string{"X-Generation-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
