package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"hotelops/internal/application/usecases/booking"
	domain "hotelops/internal/domain/bookings"
)

func (s *Server) CreateRoomBookingHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var request booking.CreateRoomBookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	b, err := s.bookingsService.CreateRoomBooking(ctx, request)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, b)
}

func (s *Server) ListRoomBookingsHandler(c echo.Context) error {
	bookings, err := s.bookingsService.ListRoomBookings(
		c.Request().Context(),
		c.QueryParam("guest_email"),
		domain.Status(c.QueryParam("status")),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookings)
}

func (s *Server) GetRoomBookingHandler(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	b, err := s.bookingsService.GetRoomBookingByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, b)
}

func (s *Server) GetRoomBookingByNumberHandler(c echo.Context) error {
	b, err := s.bookingsService.GetRoomBookingByNumber(c.Request().Context(), c.Param("booking_number"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, b)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateRoomBookingStatusHandler(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	var request updateStatusRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	b, err := s.bookingsService.UpdateRoomBookingStatus(c.Request().Context(), id, domain.Status(request.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, b)
}

func (s *Server) CancelRoomBookingHandler(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	b, err := s.bookingsService.CancelRoomBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, b)
}

func bookingID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "booking_id is not a valid UUID")
	}
	return id, nil
}
