package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"github.com/taldoflemis/fornello/ordini"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("pizzeria")
	meter  = otel.Meter("pizzeria")
)

type MainHandler struct {
	svc             *ordini.Service
	eventer         ordini.OrderEventer
	health          *healthgo.Health
	adminToken      string
	placedCounter   metric.Int64Counter
	canceledCounter metric.Int64Counter
}

func NewMainHandler(
	e *echo.Echo,
	settings *Settings,
	svc *ordini.Service,
	eventer ordini.OrderEventer,
	health *healthgo.Health,
) (*MainHandler, error) {
	logger := slog.Default()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: settings.HTTP.CORS.Origins,
		AllowMethods: settings.HTTP.CORS.Methods,
		AllowHeaders: settings.HTTP.CORS.Headers,
	}))
	e.Use(otelecho.Middleware("pizzeria",
		otelecho.WithMetricAttributeFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("client.ip", r.RemoteAddr),
				attribute.String("user.agent", r.UserAgent()),
			}
		}),
		otelecho.WithEchoMetricAttributeFn(func(c echo.Context) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("handler.path", c.Path()),
				attribute.String("handler.method", c.Request().Method),
			}
		}),
	))

	placedCounter, err := meter.Int64Counter(
		"pizzeria.orders.placed",
		metric.WithDescription("Number of orders placed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	canceledCounter, err := meter.Int64Counter(
		"pizzeria.orders.canceled",
		metric.WithDescription("Number of orders canceled"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	handler := &MainHandler{
		svc:             svc,
		eventer:         eventer,
		health:          health,
		adminToken:      settings.Pizzeria.AdminToken,
		placedCounter:   placedCounter,
		canceledCounter: canceledCounter,
	}

	e.GET("/healthz", handler.HealthCheck)

	e.GET("/menu", handler.ListMenu)
	e.POST("/menu", handler.AddPizza, handler.requireAdmin)
	e.DELETE("/menu/:id", handler.DeletePizza, handler.requireAdmin)

	e.POST("/register", handler.RegisterUser)

	e.POST("/order", handler.PlaceOrder)
	e.GET("/order/:id", handler.GetOrder)
	e.DELETE("/order/:id", handler.CancelOrder)
	e.DELETE("/admin/order/:id", handler.AdminCancelOrder, handler.requireAdmin)

	e.GET("/orders/live", handler.GetLiveOrdersSSE)

	return handler, nil
}

// errorHandler keeps the wire contract of the service: every error body is
// {"error": <string>} and a miss on the routing table answers 404
// "Endpoint not found" whatever the method.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed {
			_ = c.JSON(http.StatusNotFound, ErrorResponse{Error: "Endpoint not found"})
			return
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, ErrorResponse{Error: msg})
		return
	}

	slog.ErrorContext(c.Request().Context(), "unhandled error", slog.Any("err", err))
	_ = c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// requireAdmin compares the Authorization header against the configured
// shared secret by exact string equality. No identity, no expiry.
func (h *MainHandler) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Request().Header.Get("Authorization")
		if token == "" {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing admin token"})
		}
		if token != h.adminToken {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized. Admin token required"})
		}
		return next(c)
	}
}

func statusForKind(kind ordini.Kind) int {
	switch kind {
	case ordini.KindUnauthorized:
		return http.StatusUnauthorized
	case ordini.KindNotFound:
		return http.StatusNotFound
	default:
		// InvalidArgument, Conflict and InvalidOperation are all client
		// mistakes on the wire.
		return http.StatusBadRequest
	}
}

// domainError maps a core rejection onto the wire. Anything that is not an
// ordini error bubbles up to the error handler.
func (h *MainHandler) domainError(c echo.Context, err error) error {
	var derr *ordini.Error
	if errors.As(err, &derr) {
		return c.JSON(statusForKind(derr.Kind), ErrorResponse{Error: derr.Message})
	}
	return err
}

// ListMenu godoc
//
// @Summary List the menu
// @Tags menu
// @Produce json
// @Success 200 {array} string
// @Router /menu [get]
func (h *MainHandler) ListMenu(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Menu(c.Request().Context()))
}

// AddPizza godoc
//
// @Summary Add a pizza to the menu
// @Tags menu
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param pizza body AddPizzaRequest true "Pizza to add"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /menu [post]
func (h *MainHandler) AddPizza(c echo.Context) error {
	ctx := c.Request().Context()

	var req AddPizzaRequest
	if err := c.Bind(&req); err != nil {
		slog.ErrorContext(ctx, "failed to bind request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}

	if err := h.svc.AddPizza(ctx, req.Pizza, true); err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Pizza added"})
}

// DeletePizza godoc
//
// @Summary Delete a pizza from the menu by position
// @Tags menu
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Menu position"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /menu/{id} [delete]
func (h *MainHandler) DeletePizza(c echo.Context) error {
	ctx := c.Request().Context()

	index, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Pizza ID must be an integer"})
	}

	if err := h.svc.DeletePizza(ctx, index, true); err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Pizza deleted"})
}

// RegisterUser godoc
//
// @Summary Register a username with a delivery address
// @Tags user
// @Accept json
// @Produce json
// @Param registration body RegisterRequest true "Registration"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /register [post]
func (h *MainHandler) RegisterUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		slog.ErrorContext(ctx, "failed to bind request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}

	if err := h.svc.Register(ctx, req.Username, req.Address); err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "User registered successfully"})
}

// PlaceOrder godoc
//
// @Summary Place a new order
// @Tags order
// @Accept json
// @Produce json
// @Param order body NewOrderRequest true "New order"
// @Success 200 {object} NewOrderResponse
// @Failure 400 {object} ErrorResponse
// @Router /order [post]
func (h *MainHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req NewOrderRequest
	if err := c.Bind(&req); err != nil {
		slog.ErrorContext(ctx, "failed to bind request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
	}

	order, err := h.svc.PlaceOrder(ctx, req.Pizza, req.Username, req.Address)
	if err != nil {
		return h.domainError(c, err)
	}

	h.placedCounter.Add(ctx, 1)
	h.publishEvent(c, order)

	slog.InfoContext(ctx, "order placed",
		slog.Int("order_id", order.ID),
		slog.String("pizza", order.Pizza))

	return c.JSON(http.StatusOK, NewOrderResponse{OrderID: order.ID})
}

// GetOrder godoc
//
// @Summary Get an order's pizza, status and address
// @Tags order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} OrderStatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /order/{id} [get]
func (h *MainHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Order ID must be a positive integer"})
	}

	order, err := h.svc.Order(ctx, id)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(http.StatusOK, OrderStatusResponse{
		Pizza:   order.Pizza,
		Status:  order.Status,
		Address: order.Address,
	})
}

// CancelOrder godoc
//
// @Summary Cancel an order
// @Tags order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /order/{id} [delete]
func (h *MainHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Order ID must be a positive integer"})
	}

	order, err := h.svc.Cancel(ctx, id)
	if err != nil {
		return h.domainError(c, err)
	}

	h.canceledCounter.Add(ctx, 1)
	h.publishEvent(c, order)

	return c.JSON(http.StatusOK, MessageResponse{Message: "Order canceled"})
}

// AdminCancelOrder godoc
//
// @Summary Cancel any order, whatever its status
// @Tags order
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/order/{id} [delete]
func (h *MainHandler) AdminCancelOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Order ID must be a positive integer"})
	}

	order, err := h.svc.AdminCancel(ctx, id, true)
	if err != nil {
		return h.domainError(c, err)
	}

	h.canceledCounter.Add(ctx, 1)
	h.publishEvent(c, order)

	return c.JSON(http.StatusOK, MessageResponse{Message: "Order canceled by admin"})
}

func (h *MainHandler) publishEvent(c echo.Context, order ordini.Order) {
	ctx := c.Request().Context()
	if err := h.eventer.PubEvent(ctx, ordini.NewEvent(order)); err != nil {
		slog.ErrorContext(ctx, "failed to publish order event",
			slog.Int("order_id", order.ID),
			slog.Any("err", err))
	}
}

// GetLiveOrdersSSE godoc
//
// @Summary Stream order lifecycle events via Server-Sent Events (SSE)
// @Tags order
// @Produce text/event-stream
// @Success 200 {object} ordini.Event
// @Router /orders/live [get]
func (h *MainHandler) GetLiveOrdersSSE(c echo.Context) error {
	ctx := c.Request().Context()

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		slog.ErrorContext(ctx, "streaming unsupported by response writer")
		return echo.NewHTTPError(http.StatusInternalServerError, "Streaming unsupported")
	}

	ch, err := h.eventer.SubEvents(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to order events", slog.Any("err", err))
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	notify := ctx.Done()
	for {
		select {
		case <-notify:
			slog.InfoContext(ctx, "client closed connection")
			return h.eventer.UnsubEvents(ctx, ch)
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				slog.ErrorContext(ctx, "marshal event for SSE", slog.Any("err", err))
				continue
			}
			if _, err := c.Response().Writer.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				slog.ErrorContext(ctx, "write SSE", slog.Any("err", err))
				return h.eventer.UnsubEvents(ctx, ch)
			}
			flusher.Flush()
		}
	}
}

// HealthCheck godoc
//
// @Summary Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} healthgo.Check
// @Failure 503 {object} healthgo.Check
// @Router /healthz [get]
func (h *MainHandler) HealthCheck(c echo.Context) error {
	check := h.health.Measure(c.Request().Context())

	statusCode := http.StatusOK
	if check.Status != healthgo.StatusOK {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, check)
}
