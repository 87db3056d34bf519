package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiClient is a thin wrapper over the pizzeria HTTP API. It does no
// validation of its own, it trusts the service's error messages.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(settings ClientSettings) *apiClient {
	return &apiClient{
		baseURL: settings.BaseURL,
		client: &http.Client{
			Timeout: time.Duration(settings.TimeoutInSeconds) * time.Second,
		},
	}
}

// serverError is the {"error": ...} body the service answers rejections
// with.
type serverError struct {
	Message string
}

func (e *serverError) Error() string { return e.Message }

func (a *apiClient) do(method, path string, body any, adminToken string, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if adminToken != "" {
		req.Header.Set("Authorization", adminToken)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &errBody); err != nil || errBody.Error == "" {
			return fmt.Errorf("unexpected response %d from %s", resp.StatusCode, path)
		}
		return &serverError{Message: errBody.Error}
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

func (a *apiClient) ListMenu() ([]string, error) {
	var menu []string
	if err := a.do(http.MethodGet, "/menu", nil, "", &menu); err != nil {
		return nil, err
	}
	return menu, nil
}

func (a *apiClient) Register(username, address string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"username": username, "address": address}
	if err := a.do(http.MethodPost, "/register", body, "", &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (a *apiClient) PlaceOrder(pizza, username, address string) (int, error) {
	body := map[string]string{"pizza": pizza}
	if username != "" {
		body["username"] = username
	}
	if address != "" {
		body["address"] = address
	}

	var out struct {
		OrderID int `json:"order_id"`
	}
	if err := a.do(http.MethodPost, "/order", body, "", &out); err != nil {
		return 0, err
	}
	return out.OrderID, nil
}

type orderStatus struct {
	Pizza   string `json:"pizza"`
	Status  string `json:"status"`
	Address string `json:"address"`
}

func (a *apiClient) OrderStatus(orderID string) (orderStatus, error) {
	var out orderStatus
	if err := a.do(http.MethodGet, "/order/"+orderID, nil, "", &out); err != nil {
		return orderStatus{}, err
	}
	return out, nil
}

func (a *apiClient) CancelOrder(orderID string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := a.do(http.MethodDelete, "/order/"+orderID, nil, "", &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (a *apiClient) AddPizza(token, pizza string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"pizza": pizza}
	if err := a.do(http.MethodPost, "/menu", body, token, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (a *apiClient) DeletePizza(token, pizzaID string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := a.do(http.MethodDelete, "/menu/"+pizzaID, nil, token, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (a *apiClient) AdminCancelOrder(token, orderID string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := a.do(http.MethodDelete, "/admin/order/"+orderID, nil, token, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
