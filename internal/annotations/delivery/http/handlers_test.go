package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/media"
	"github.com/clipscribe/video-annotator/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type useCaseStub struct {
	submitJob    *models.Job
	submitErr    error
	status       *models.JobStatus
	statusErr    error
	cancelErr    error
	record       *models.AnnotationRecord
	recordErr    error
	lastSubmit   *models.SubmitInput
	lastCancelID string
}

func (s *useCaseStub) Submit(ctx context.Context, file io.Reader, input *models.SubmitInput) (*models.Job, error) {
	s.lastSubmit = input
	return s.submitJob, s.submitErr
}

func (s *useCaseStub) GetStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {
	return s.status, s.statusErr
}

func (s *useCaseStub) CancelJob(ctx context.Context, jobID string) error {
	s.lastCancelID = jobID
	return s.cancelErr
}

func (s *useCaseStub) GetAnnotation(ctx context.Context, id int64) (*models.AnnotationRecord, error) {
	return s.record, s.recordErr
}

func multipartVideo(t *testing.T, field, name string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err = part.Write([]byte("fake mp4 bytes")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err = writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestSubmitHandlerAccepted(t *testing.T) {
	stub := &useCaseStub{submitJob: &models.Job{JobID: "abc-123", State: models.JobStatePending}}
	handler := NewAnnotationHandler(stub)

	body, contentType := multipartVideo(t, "file", "clip.mp4")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/annotations", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := handler.Submit()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["job_id"] != "abc-123" {
		t.Fatalf("job_id = %q", resp["job_id"])
	}
	if stub.lastSubmit == nil || stub.lastSubmit.FileName != "clip.mp4" {
		t.Fatalf("submit input = %+v", stub.lastSubmit)
	}
}

func TestSubmitHandlerMissingFile(t *testing.T) {
	handler := NewAnnotationHandler(&useCaseStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/annotations", strings.NewReader("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := handler.Submit()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitHandlerInvalidMedia(t *testing.T) {
	stub := &useCaseStub{submitErr: errors.Wrap(media.ErrInvalidMedia, "no video stream")}
	handler := NewAnnotationHandler(stub)

	body, contentType := multipartVideo(t, "file", "junk.mp4")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/annotations", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := handler.Submit()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "InvalidMediaError") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestGetJobStatusHandler(t *testing.T) {
	stub := &useCaseStub{status: &models.JobStatus{
		JobID: "abc-123", State: models.JobStateRunning,
		FramesProcessed: 45, FramesTotal: 90, ProgressPercent: 50,
	}}
	handler := NewAnnotationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("job_id")
	c.SetParamValues("abc-123")

	if err := handler.GetJobStatus()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status models.JobStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.State != models.JobStateRunning || status.ProgressPercent != 50 {
		t.Fatalf("status = %+v", status)
	}
}

func TestGetJobStatusHandlerNotFound(t *testing.T) {
	stub := &useCaseStub{statusErr: annotations.ErrJobNotFound}
	handler := NewAnnotationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("job_id")
	c.SetParamValues("ghost")

	if err := handler.GetJobStatus()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "JobNotFoundError: no job with id ghost") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCancelJobHandlerConflictOnTerminal(t *testing.T) {
	stub := &useCaseStub{cancelErr: annotations.ErrTerminalState}
	handler := NewAnnotationHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("job_id")
	c.SetParamValues("abc-123")

	if err := handler.CancelJob()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCancelJobHandlerOK(t *testing.T) {
	stub := &useCaseStub{}
	handler := NewAnnotationHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("job_id")
	c.SetParamValues("abc-123")

	if err := handler.CancelJob()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.lastCancelID != "abc-123" {
		t.Fatalf("cancel id = %q", stub.lastCancelID)
	}
}

func TestGetAnnotationHandlerBadID(t *testing.T) {
	handler := NewAnnotationHandler(&useCaseStub{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-number")

	if err := handler.GetAnnotation()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetAnnotationHandler(t *testing.T) {
	stub := &useCaseStub{record: &models.AnnotationRecord{
		ID: 7, JobID: "abc-123", Transcription: "hello",
		Captions: "Timestamp 0.00s: a desk",
	}}
	handler := NewAnnotationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := handler.GetAnnotation()(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var record models.AnnotationRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if record.ID != 7 || record.Transcription != "hello" {
		t.Fatalf("record = %+v", record)
	}
}
