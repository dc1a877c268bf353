package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/allisson/tokenauth/internal/config"
)

// createCORSMiddleware returns nil when CORS is disabled or no usable origin is configured.
//
// The policy follows the token carrier. With the header carrier browsers must be allowed to
// send Authorization and credentials stay off. With the cookie carrier the token travels as a
// cookie, so credentials are allowed and Authorization is not.
func createCORSMiddleware(enabled bool, allowOriginsStr, carrier string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, rejected := parseOrigins(allowOriginsStr)
	for _, origin := range rejected {
		logger.Warn("ignoring CORS origin", slog.String("origin", origin))
	}
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins configured, CORS will not be applied")
		return nil
	}

	corsConfig := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if carrier == config.TokenCarrierCookie {
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	}

	logger.Info("CORS enabled",
		slog.Any("origins", origins),
		slog.Bool("credentials", corsConfig.AllowCredentials))

	return cors.New(corsConfig)
}

// parseOrigins splits a comma-separated origin list. Wildcards and entries without an
// http or https scheme are returned as rejected.
func parseOrigins(originsStr string) (origins, rejected []string) {
	for part := range strings.SplitSeq(originsStr, ",") {
		origin := strings.TrimSpace(part)
		switch {
		case origin == "":
		case strings.Contains(origin, "*"),
			!strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://"):
			rejected = append(rejected, origin)
		default:
			origins = append(origins, strings.TrimSuffix(origin, "/"))
		}
	}
	return origins, rejected
}
