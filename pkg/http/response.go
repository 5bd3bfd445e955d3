package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes API response with status and data.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// SuccessResponse writes success response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// LegacyErrorResponse writes {"status":"error","message":...} with the
// status carried by an AppError, or 500 for anything else.
func LegacyErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.JSON(appErr.Status, LegacyResponse{Status: StatusFailed, Message: appErr.Message})
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, LegacyResponse{Status: StatusFailed, Message: verrs.Error()})
	}
	return c.JSON(http.StatusInternalServerError, LegacyResponse{Status: StatusFailed, Message: "Something went wrong"})
}

// AppErrorResponse writes an AppError in the API envelope.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, []*AppError{appErr})
	}
	return DataResponse(c, http.StatusInternalServerError, "Something went wrong")
}
