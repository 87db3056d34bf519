package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/fornello/dispensa"
	"github.com/taldoflemis/fornello/ordini"
)

const testAdminToken = "test-admin-token"

type testServer struct {
	e       *echo.Echo
	svc     *ordini.Service
	eventer *ordini.ChannelOrderEventer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	settings := &Settings{
		App: dispensa.AppSettings{Name: "pizzeria", Version: "test"},
		HTTP: dispensa.HTTPSettings{
			IP:   "127.0.0.1",
			Port: "8080",
			CORS: dispensa.CORSSettings{
				Origins: []string{"http://localhost:8080"},
				Methods: []string{"GET", "POST", "DELETE"},
				Headers: []string{"Accept", "Authorization", "Content-Type"},
			},
		},
		Pizzeria: PizzeriaSettings{
			AdminToken:       testAdminToken,
			InitialMenu:      []string{"Margherita", "Pepperoni"},
			SubjectPrefix:    "orders",
			EventChannelSize: 16,
		},
	}

	health, err := healthgo.New(healthgo.WithComponent(healthgo.Component{
		Name:    "pizzeria",
		Version: "test",
	}))
	require.NoError(t, err)

	e := echo.New()
	svc := ordini.NewService(settings.Pizzeria.InitialMenu)
	eventer := ordini.NewChannelOrderEventer(settings.Pizzeria.EventChannelSize)

	_, err = NewMainHandler(e, settings, svc, eventer, health)
	require.NoError(t, err)

	return &testServer{e: e, svc: svc, eventer: eventer}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	// Arrange
	ts := newTestServer(t)

	// Act + Assert: register
	rec := ts.request(t, http.MethodPost, "/register", RegisterRequest{Username: "alice", Address: "1 Main St"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User registered successfully", decodeBody[MessageResponse](t, rec).Message)

	// place an order as alice, no address needed
	rec = ts.request(t, http.MethodPost, "/order", NewOrderRequest{Pizza: "Margherita", Username: "alice"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[NewOrderResponse](t, rec).OrderID)

	// the order is preparing at alice's stored address
	rec = ts.request(t, http.MethodGet, "/order/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[OrderStatusResponse](t, rec)
	assert.Equal(t, "margherita", got.Pizza)
	assert.Equal(t, ordini.StatusPreparing, got.Status)
	assert.Equal(t, "1 Main St", got.Address)

	// cancel it
	rec = ts.request(t, http.MethodDelete, "/order/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order canceled", decodeBody[MessageResponse](t, rec).Message)

	rec = ts.request(t, http.MethodGet, "/order/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ordini.StatusCanceled, decodeBody[OrderStatusResponse](t, rec).Status)
}

func TestPlaceOrderRejections(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		req       NewOrderRequest
		wantError string
	}{
		{
			name:      "not on the menu",
			req:       NewOrderRequest{Pizza: "unknown", Address: "X"},
			wantError: "Pizza 'unknown' is not on the menu",
		},
		{
			name:      "empty pizza",
			req:       NewOrderRequest{Address: "X"},
			wantError: "Pizza field is required and cannot be empty",
		},
		{
			name:      "unregistered username",
			req:       NewOrderRequest{Pizza: "Margherita", Username: "bob"},
			wantError: "Username 'bob' not registered",
		},
		{
			name:      "guest without address",
			req:       NewOrderRequest{Pizza: "Margherita"},
			wantError: "Address is required for unregistered users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec := ts.request(t, http.MethodPost, "/order", tt.req, "")

			// Assert
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantError, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestGetOrderValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantError string
	}{
		{
			name:      "non-integer id",
			path:      "/order/abc",
			wantCode:  http.StatusBadRequest,
			wantError: "Order ID must be a positive integer",
		},
		{
			name:      "zero id",
			path:      "/order/0",
			wantCode:  http.StatusBadRequest,
			wantError: "Order ID must be a positive integer",
		},
		{
			name:      "unknown id",
			path:      "/order/42",
			wantCode:  http.StatusNotFound,
			wantError: "Order with ID 42 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec := ts.request(t, http.MethodGet, tt.path, nil, "")

			// Assert
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantError, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestMenuAdministration(t *testing.T) {
	// Arrange
	ts := newTestServer(t)

	// Act + Assert: add a pizza
	rec := ts.request(t, http.MethodPost, "/menu", AddPizzaRequest{Pizza: "Hawaiian"}, testAdminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pizza added", decodeBody[MessageResponse](t, rec).Message)

	// a case-insensitive duplicate is rejected
	rec = ts.request(t, http.MethodPost, "/menu", AddPizzaRequest{Pizza: "hawaiian"}, testAdminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Pizza 'hawaiian' already exists in the menu", decodeBody[ErrorResponse](t, rec).Error)

	rec = ts.request(t, http.MethodGet, "/menu", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Margherita", "Pepperoni", "Hawaiian"}, decodeBody[[]string](t, rec))

	// delete the first entry, later ones shift down
	rec = ts.request(t, http.MethodDelete, "/menu/0", nil, testAdminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pizza deleted", decodeBody[MessageResponse](t, rec).Message)

	rec = ts.request(t, http.MethodGet, "/menu", nil, "")
	assert.Equal(t, []string{"Pepperoni", "Hawaiian"}, decodeBody[[]string](t, rec))

	// out-of-range and non-integer positions
	rec = ts.request(t, http.MethodDelete, "/menu/5", nil, testAdminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Pizza with ID 5 not found", decodeBody[ErrorResponse](t, rec).Error)

	rec = ts.request(t, http.MethodDelete, "/menu/abc", nil, testAdminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Pizza ID must be an integer", decodeBody[ErrorResponse](t, rec).Error)
}

func TestAdminAuthentication(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		token     string
		wantError string
	}{
		{
			name:      "missing token",
			token:     "",
			wantError: "Missing admin token",
		},
		{
			name:      "wrong token",
			token:     "nope",
			wantError: "Unauthorized. Admin token required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec := ts.request(t, http.MethodPost, "/menu", AddPizzaRequest{Pizza: "Hawaiian"}, tt.token)

			// Assert
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantError, decodeBody[ErrorResponse](t, rec).Error)

			// and the menu stayed untouched
			menuRec := ts.request(t, http.MethodGet, "/menu", nil, "")
			assert.Equal(t, []string{"Margherita", "Pepperoni"}, decodeBody[[]string](t, menuRec))
		})
	}
}

func TestCancelReadyOrder(t *testing.T) {
	// Arrange
	ts := newTestServer(t)
	ctx := context.Background()

	rec := ts.request(t, http.MethodPost, "/order", NewOrderRequest{Pizza: "Margherita", Address: "1 Main St"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := ts.svc.MarkReady(ctx, 1)
	require.NoError(t, err)

	// Act + Assert: the customer path is blocked
	rec = ts.request(t, http.MethodDelete, "/order/1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot cancel an order that is 'ready_to_be_delivered'", decodeBody[ErrorResponse](t, rec).Error)

	// the admin path is not
	rec = ts.request(t, http.MethodDelete, "/admin/order/1", nil, testAdminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order canceled by admin", decodeBody[MessageResponse](t, rec).Message)

	order, err := ts.svc.Order(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ordini.StatusCanceled, order.Status)
}

func TestUnknownEndpoint(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/nope"},
		{name: "wrong method on known path", method: http.MethodPut, path: "/menu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec := ts.request(t, tt.method, tt.path, nil, "")

			// Assert
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "Endpoint not found", decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestRegisterValidationOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	// Act
	rec := ts.request(t, http.MethodPost, "/register", RegisterRequest{Username: " ", Address: ""}, "")

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Both 'username' and 'address' fields are required and cannot be empty", decodeBody[ErrorResponse](t, rec).Error)
}

func TestPlaceOrderPublishesEvent(t *testing.T) {
	// Arrange
	ts := newTestServer(t)
	ch, err := ts.eventer.SubEvents(context.Background())
	require.NoError(t, err)

	// Act
	rec := ts.request(t, http.MethodPost, "/order", NewOrderRequest{Pizza: "Pepperoni", Address: "1 Main St"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Assert
	ev := <-ch
	assert.Equal(t, 1, ev.OrderID)
	assert.Equal(t, "pepperoni", ev.Pizza)
	assert.Equal(t, ordini.StatusPreparing, ev.Status)
}

func TestReadyListenerAppliesKitchenEvents(t *testing.T) {
	// Arrange
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := ts.request(t, http.MethodPost, "/order", NewOrderRequest{Pizza: "Margherita", Address: "1 Main St"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	listener := newReadyListener(ts.svc, ts.eventer)
	done := make(chan error, 1)
	go func() {
		done <- listener.Run(ctx)
	}()

	// Act: the kitchen reports the order ready. The event is republished
	// until the listener has picked it up, MarkReady is idempotent.
	ready := ordini.NewEvent(ordini.Order{ID: 1, Pizza: "margherita", Status: ordini.StatusReady, Address: "1 Main St"})

	// Assert
	assert.Eventually(t, func() bool {
		require.NoError(t, ts.eventer.PubEvent(ctx, ready))
		order, err := ts.svc.Order(ctx, 1)
		return err == nil && order.Status == ordini.StatusReady
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
