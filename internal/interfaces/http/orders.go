package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelops/internal/application/usecases/order"
	domain "hotelops/internal/domain/orders"
)

func (s *Server) CreateOrderHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var request order.CreateOrderRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	o, err := s.ordersService.CreateOrder(ctx, request)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, o)
}

func (s *Server) ListOrdersHandler(c echo.Context) error {
	orders, err := s.ordersService.ListOrders(
		c.Request().Context(),
		c.QueryParam("guest_email"),
		domain.Status(c.QueryParam("status")),
		domain.Type(c.QueryParam("order_type")),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (s *Server) GetOrderHandler(c echo.Context) error {
	o, err := s.ordersService.GetOrderByNumber(c.Request().Context(), c.Param("order_number"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, o)
}

func (s *Server) UpdateOrderStatusHandler(c echo.Context) error {
	var request updateStatusRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	o, err := s.ordersService.UpdateOrderStatus(
		c.Request().Context(),
		c.Param("order_number"),
		domain.Status(request.Status),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, o)
}

func (s *Server) CancelOrderHandler(c echo.Context) error {
	o, err := s.ordersService.CancelOrder(c.Request().Context(), c.Param("order_number"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, o)
}
