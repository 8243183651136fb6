package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"streamaccts/internal/service"
)

type errorResponse struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Stack     []string `json:"stack,omitempty"`
	Timestamp string   `json:"timestamp"`
	Path      string   `json:"path"`
}

var kindStatus = map[service.ErrorKind]int{
	service.KindInvalid:      http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
}

// ErrorHandler renders every failure as the JSON error envelope. The error
// chain is only exposed outside production.
func ErrorHandler(production bool, log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := classify(err, c)

		entry := log.WithFields(logrus.Fields{
			"status": code,
			"path":   c.Request().URL.Path,
		})
		if code >= http.StatusInternalServerError {
			entry.WithError(err).Error(message)
		} else {
			entry.WithError(err).Debug(message)
		}

		if code >= http.StatusInternalServerError && production {
			message = http.StatusText(code)
		}

		resp := errorResponse{
			Success:   false,
			Message:   message,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Path:      c.Request().URL.Path,
		}
		if !production {
			resp.Stack = errorChain(err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, resp)
		}
		if err != nil {
			log.WithError(err).Error("write error response")
		}
	}
}

func classify(err error, c echo.Context) (int, string) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if code, ok := kindStatus[svcErr.Kind]; ok {
			return code, svcErr.Message
		}
	}

	if errors.Is(err, echo.ErrNotFound) {
		return http.StatusNotFound, fmt.Sprintf("Route %s not found", c.Request().URL.RequestURI())
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	if errors.Is(err, service.ErrProviderNotConfigured) {
		return http.StatusServiceUnavailable, err.Error()
	}

	return http.StatusInternalServerError, err.Error()
}

func errorChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}
