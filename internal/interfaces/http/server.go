package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"hotelops/internal/application/usecases/booking"
	"hotelops/internal/application/usecases/order"
	"hotelops/internal/application/usecases/payment"
	"hotelops/internal/auth"
	"hotelops/internal/idempotency"
)

type Server struct {
	e    *echo.Echo
	addr string

	bookingsService *booking.Usecase
	ordersService   *order.Usecase
	paymentsService *payment.Usecase
}

func NewServer(
	e *echo.Echo,
	addr string,
	bookingsService *booking.Usecase,
	ordersService *order.Usecase,
	paymentsService *payment.Usecase,
	routerIsRunning func() bool,
) *Server {
	srv := &Server{
		e:               e,
		addr:            addr,
		bookingsService: bookingsService,
		ordersService:   ordersService,
		paymentsService: paymentsService,
	}

	e.HTTPErrorHandler = errorHandler(e)

	e.POST("/bookings/rooms", srv.CreateRoomBookingHandler)
	e.GET("/bookings/rooms", srv.ListRoomBookingsHandler)
	e.GET("/bookings/rooms/:booking_id", srv.GetRoomBookingHandler)
	e.GET("/bookings/rooms/number/:booking_number", srv.GetRoomBookingByNumberHandler)
	e.PUT("/bookings/rooms/:booking_id/status", srv.UpdateRoomBookingStatusHandler)
	e.DELETE("/bookings/rooms/:booking_id", srv.CancelRoomBookingHandler)

	e.POST("/bookings/tables", srv.CreateTableBookingHandler)
	e.GET("/bookings/tables", srv.ListTableBookingsHandler)
	e.GET("/bookings/tables/:booking_id", srv.GetTableBookingHandler)
	e.GET("/bookings/tables/number/:booking_number", srv.GetTableBookingByNumberHandler)
	e.PUT("/bookings/tables/:booking_id/status", srv.UpdateTableBookingStatusHandler)
	e.DELETE("/bookings/tables/:booking_id", srv.CancelTableBookingHandler)

	e.POST("/orders", srv.CreateOrderHandler)
	e.GET("/orders", srv.ListOrdersHandler)
	e.GET("/orders/:order_number", srv.GetOrderHandler)
	e.PUT("/orders/:order_number/status", srv.UpdateOrderStatusHandler)
	e.DELETE("/orders/:order_number", srv.CancelOrderHandler)

	e.POST("/payments", srv.ProcessPaymentHandler)
	e.GET("/payments", srv.ListPaymentsHandler)
	e.GET("/payments/:payment_id", srv.GetPaymentHandler)
	e.POST("/payments/:payment_id/refund", srv.RefundPaymentHandler)

	e.GET("/health", func(c echo.Context) error {
		if !routerIsRunning() {
			return c.String(http.StatusServiceUnavailable, "router is not running")
		}
		return c.String(http.StatusOK, "ok")
	})

	e.Use(requestContextMiddleware)

	// logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log.FromContext(c.Request().Context()).
				WithField("path", c.Request().URL.Path).
				Info("Handling a request")

			err := next(c)

			if err != nil {
				log.FromContext(c.Request().Context()).
					WithField("error", err).
					Error("Request handling error")
			}

			return err
		}
	})

	return srv
}

// requestContextMiddleware lifts the idempotency key and the caller identity
// off the request headers into the context the usecases read.
func requestContextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if key := c.Request().Header.Get(idempotency.HeaderKey); key != "" {
			ctx = idempotency.WithKey(ctx, key)
		}
		var roles []string
		if raw := c.Request().Header.Get(auth.HeaderRoles); raw != "" {
			roles = strings.Split(raw, ",")
			for i := range roles {
				roles[i] = strings.TrimSpace(roles[i])
			}
		}
		ctx = auth.WithActor(ctx, c.Request().Header.Get(auth.HeaderActor), roles)

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) Start() error {
	err := s.e.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
