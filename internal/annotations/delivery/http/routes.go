package http

import (
	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/labstack/echo/v4"
)

func MapAnnotationRoutes(group *echo.Group, h annotations.Handler) {
	group.POST("", h.Submit())
	group.GET("/jobs/:job_id", h.GetJobStatus())
	group.POST("/jobs/:job_id/cancel", h.CancelJob())
	group.GET("/:id", h.GetAnnotation())
}
