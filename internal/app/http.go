package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/artspace-backend/internal/http"
	httpH "github.com/yungbote/artspace-backend/internal/http/handlers"
	httpMW "github.com/yungbote/artspace-backend/internal/http/middleware"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/services"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Gallery    *httpH.GalleryHandler
	Exhibition *httpH.ExhibitionHandler
	Art        *httpH.ArtHandler
	Docent     *httpH.DocentHandler
	AI         *httpH.AIHandler
	Job        *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:     httpH.NewHealthHandler(nil),
		Gallery:    httpH.NewGalleryHandler(log, svcs.Gallery),
		Exhibition: httpH.NewExhibitionHandler(log, svcs.Exhibition, svcs.Art),
		Art:        httpH.NewArtHandler(log, svcs.Art),
		Job:        httpH.NewJobHandler(log, svcs.JobService),
	}
	if sqlDB, err := db.DB(); err == nil {
		h.Health = httpH.NewHealthHandler(sqlDB)
	}
	if svcs.Docent != nil {
		h.Docent = httpH.NewDocentHandler(log, svcs.Docent)
	}
	if svcs.AIContent != nil {
		h.AI = httpH.NewAIHandler(log, svcs.AIContent)
	}
	return h
}

// wireMiddleware leaves writes open when JWT_SECRET_KEY is unset.
func wireMiddleware(log *logger.Logger, auth services.AuthService) Middleware {
	log.Info("Wiring middleware...")
	if !auth.Enabled() {
		log.Warn("JWT_SECRET_KEY not set; write endpoints are unauthenticated")
		return Middleware{}
	}
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, auth)}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	r := http.NewRouter(http.RouterConfig{
		Log:               log,
		ServiceName:       cfg.OTel.ServiceName,
		OTelEnabled:       cfg.OTel.Enabled,
		CORSOrigins:       cfg.CORSOrigins,
		MaxUploadBytes:    services.MaxArtImageBytes,
		AuthMiddleware:    middleware.Auth,
		GalleryHandler:    handlers.Gallery,
		ExhibitionHandler: handlers.Exhibition,
		ArtHandler:        handlers.Art,
		DocentHandler:     handlers.Docent,
		AIHandler:         handlers.AI,
		JobHandler:        handlers.Job,
		HealthHandler:     handlers.Health,
	})
	// Serve local media when it is not mirrored to a bucket.
	if cfg.MediaBucket == "" {
		r.Static("/media", cfg.MediaRoot)
	}
	return r
}
