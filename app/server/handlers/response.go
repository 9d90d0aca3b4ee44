package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope 所有接口统一的响应信封
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (a *App) ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, &Envelope{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func (a *App) er(c echo.Context, statusCode int) error {
	return a.erMsg(c, statusCode, http.StatusText(statusCode))
}

func (a *App) erMsg(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, &Envelope{
		Code:    statusCode,
		Message: message,
	})
}
