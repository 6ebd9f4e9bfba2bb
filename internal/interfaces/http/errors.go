package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelops/internal/fault"
)

type errorResponse struct {
	Error string     `json:"error"`
	Kind  fault.Kind `json:"kind,omitempty"`
}

// errorHandler translates the domain error taxonomy into HTTP statuses so
// handlers can just return errors.
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var fe *fault.Error
		if errors.As(err, &fe) {
			status := http.StatusInternalServerError
			switch fe.Kind {
			case fault.KindNotFound:
				status = http.StatusNotFound
			case fault.KindBusinessRuleViolation:
				status = http.StatusConflict
			case fault.KindPayment:
				status = http.StatusPaymentRequired
			case fault.KindForbidden:
				status = http.StatusForbidden
			}

			if err := c.JSON(status, errorResponse{Error: fe.Message, Kind: fe.Kind}); err != nil {
				e.Logger.Error(err)
			}
			return
		}

		e.DefaultHTTPErrorHandler(err, c)
	}
}
