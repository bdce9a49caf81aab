package http

import (
	"net/http"
	"strconv"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/media"
	"github.com/clipscribe/video-annotator/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type annotationHandler struct {
	annotationUC annotations.UseCase
}

func NewAnnotationHandler(annotationUC annotations.UseCase) annotations.Handler {
	return &annotationHandler{
		annotationUC: annotationUC,
	}
}

func (h *annotationHandler) Submit() echo.HandlerFunc {
	return func(c echo.Context) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing file upload"})
		}
		src, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unreadable file upload"})
		}
		defer src.Close()

		input := &models.SubmitInput{
			FileName: fileHeader.Filename,
			FileSize: fileHeader.Size,
		}
		job, err := h.annotationUC.Submit(c.Request().Context(), src, input)
		if err != nil {
			if errors.Is(err, media.ErrInvalidMedia) {
				return c.JSON(http.StatusBadRequest, map[string]string{
					"error": "InvalidMediaError: " + err.Error(),
				})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusAccepted, map[string]string{"job_id": job.JobID})
	}
}

func (h *annotationHandler) GetJobStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		status, err := h.annotationUC.GetStatus(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, annotations.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error": "JobNotFoundError: no job with id " + jobID,
				})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, status)
	}
}

func (h *annotationHandler) CancelJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		err := h.annotationUC.CancelJob(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, annotations.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error": "JobNotFoundError: no job with id " + jobID,
				})
			}
			if errors.Is(err, annotations.ErrTerminalState) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "Job already finished"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Cancellation requested"})
	}
}

func (h *annotationHandler) GetAnnotation() echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid annotation id"})
		}
		record, err := h.annotationUC.GetAnnotation(c.Request().Context(), id)
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, record)
	}
}
