package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/artspace-backend/internal/http/handlers"
	httpMW "github.com/yungbote/artspace-backend/internal/http/middleware"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	OTelEnabled    bool
	CORSOrigins    []string
	MaxUploadBytes int64

	AuthMiddleware *httpMW.AuthMiddleware

	GalleryHandler    *httpH.GalleryHandler
	ExhibitionHandler *httpH.ExhibitionHandler
	ArtHandler        *httpH.ArtHandler
	DocentHandler     *httpH.DocentHandler
	AIHandler         *httpH.AIHandler
	JobHandler        *httpH.JobHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.GalleryHandler != nil {
			api.GET("/galleries", cfg.GalleryHandler.ListGalleries)
			api.GET("/galleries/:id", cfg.GalleryHandler.GetGallery)
		}
		if cfg.ExhibitionHandler != nil {
			api.GET("/exhibitions", cfg.ExhibitionHandler.ListExhibitions)
			api.GET("/exhibitions/:id", cfg.ExhibitionHandler.GetExhibition)
			api.GET("/exhibitions/:id/arts", cfg.ExhibitionHandler.ListArts)
		}
		if cfg.ArtHandler != nil {
			api.GET("/arts/:id", cfg.ArtHandler.GetArt)
		}
		if cfg.DocentHandler != nil {
			api.GET("/arts/:id/docent", cfg.DocentHandler.Get)
		}
		if cfg.JobHandler != nil {
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
		}
	}

	// Writes require a bearer token when auth is configured.
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.GalleryHandler != nil {
			protected.POST("/galleries", cfg.GalleryHandler.CreateGallery)
		}
		if cfg.ExhibitionHandler != nil {
			protected.POST("/exhibitions", cfg.ExhibitionHandler.CreateExhibition)
			protected.POST("/exhibitions/:id/like", cfg.ExhibitionHandler.ToggleLike)
		}
		if cfg.ArtHandler != nil {
			protected.POST("/arts", cfg.ArtHandler.CreateArt)
			protected.POST("/arts/:id/image", cfg.ArtHandler.UploadImage)
		}
		if cfg.DocentHandler != nil {
			protected.POST("/arts/:id/docent", cfg.DocentHandler.Generate)
			protected.POST("/arts/:id/docent/jobs", cfg.DocentHandler.Enqueue)
		}
		if cfg.AIHandler != nil {
			protected.POST("/ai/chat", cfg.AIHandler.Chat)
			protected.POST("/exhibitions/:id/invitation", cfg.AIHandler.Invitation)
			protected.POST("/exhibitions/:id/poster", cfg.AIHandler.Poster)
		}
	}

	return r
}
