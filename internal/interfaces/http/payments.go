package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelops/internal/application/usecases/payment"
	domain "hotelops/internal/domain/payments"
)

func (s *Server) ProcessPaymentHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var request payment.ProcessPaymentRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	p, err := s.paymentsService.ProcessPayment(ctx, request)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, p)
}

func (s *Server) ListPaymentsHandler(c echo.Context) error {
	payments, err := s.paymentsService.ListPayments(
		c.Request().Context(),
		c.QueryParam("booking_number"),
		domain.Status(c.QueryParam("status")),
		domain.Type(c.QueryParam("payment_type")),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payments)
}

func (s *Server) GetPaymentHandler(c echo.Context) error {
	p, err := s.paymentsService.GetPayment(c.Request().Context(), c.Param("payment_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, p)
}

func (s *Server) RefundPaymentHandler(c echo.Context) error {
	p, err := s.paymentsService.RefundPayment(c.Request().Context(), c.Param("payment_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, p)
}
