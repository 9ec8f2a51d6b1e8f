package app

import (
	httpMW "github.com/rishiwork16-sys/skilledUp-Website/internal/http/middleware"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type Middleware struct {
	// Auth is nil when AUTH_JWT_SECRET is unset; admin routes are then open.
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	auth := httpMW.NewAuthMiddleware(log, cfg.AuthJWTSecret)
	if auth == nil {
		log.Warn("AUTH_JWT_SECRET not set; admin routes are unauthenticated")
	}
	return Middleware{Auth: auth}
}
