package server

import (
	"net/http"

	annotationHttp "github.com/clipscribe/video-annotator/internal/annotations/delivery/http"
	annotationRepository "github.com/clipscribe/video-annotator/internal/annotations/repository"
	annotationUsecase "github.com/clipscribe/video-annotator/internal/annotations/usecase"
	"github.com/clipscribe/video-annotator/internal/media"
	"github.com/clipscribe/video-annotator/pkg/utils"
	"github.com/labstack/echo/v4"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	recordRepo := annotationRepository.NewAnnotationRepo(s.db)

	annotationUC := annotationUsecase.NewAnnotationUseCase(s.cfg, s.jobs, recordRepo, media.Probe, s.logger)
	annotationHandlers := annotationHttp.NewAnnotationHandler(annotationUC)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	annotationGroup := v1.Group("/annotations")

	annotationHttp.MapAnnotationRoutes(annotationGroup, annotationHandlers)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
