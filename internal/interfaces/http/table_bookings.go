package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelops/internal/application/usecases/booking"
	domain "hotelops/internal/domain/bookings"
)

func (s *Server) CreateTableBookingHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var request booking.CreateTableBookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	b, err := s.bookingsService.CreateTableBooking(ctx, request)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, b)
}

func (s *Server) ListTableBookingsHandler(c echo.Context) error {
	bookings, err := s.bookingsService.ListTableBookings(
		c.Request().Context(),
		c.QueryParam("guest_email"),
		domain.Status(c.QueryParam("status")),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookings)
}

func (s *Server) GetTableBookingHandler(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	b, err := s.bookingsService.GetTableBookingByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, b)
}

func (s *Server) GetTableBookingByNumberHandler(c echo.Context) error {
	b, err := s.bookingsService.GetTableBookingByNumber(c.Request().Context(), c.Param("booking_number"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, b)
}

func (s *Server) UpdateTableBookingStatusHandler(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	var request updateStatusRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	b, err := s.bookingsService.UpdateTableBookingStatus(c.Request().Context(), id, domain.Status(request.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, b)
}

func (s *Server) CancelTableBookingHandler(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	b, err := s.bookingsService.CancelTableBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, b)
}
