package annotations

import "github.com/labstack/echo/v4"

type Handler interface {
	Submit() echo.HandlerFunc
	GetJobStatus() echo.HandlerFunc
	CancelJob() echo.HandlerFunc
	GetAnnotation() echo.HandlerFunc
}
