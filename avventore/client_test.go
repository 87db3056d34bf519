package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *apiClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return newAPIClient(ClientSettings{BaseURL: srv.URL, TimeoutInSeconds: 5})
}

func TestPlaceOrderSendsOnlyFilledFields(t *testing.T) {
	// Arrange
	var got map[string]string
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/order", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]int{"order_id": 3})
	})

	// Act
	orderID, err := api.PlaceOrder("Margherita", "", "1 Main St")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, orderID)
	assert.Equal(t, map[string]string{"pizza": "Margherita", "address": "1 Main St"}, got)
}

func TestServerErrorsSurfaceVerbatim(t *testing.T) {
	// Arrange
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Pizza 'unknown' is not on the menu"})
	})

	// Act
	_, err := api.PlaceOrder("unknown", "", "1 Main St")

	// Assert
	require.Error(t, err)
	assert.Equal(t, "Pizza 'unknown' is not on the menu", err.Error())
}

func TestAdminTokenRidesTheAuthorizationHeader(t *testing.T) {
	// Arrange
	var gotToken string
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"message": "Pizza added"})
	})

	// Act
	message, err := api.AddPizza("default_token", "Hawaiian")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Pizza added", message)
	assert.Equal(t, "default_token", gotToken)
}

func TestNonJSONErrorBody(t *testing.T) {
	// Arrange
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	})

	// Act
	_, err := api.ListMenu()

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response 502")
}
