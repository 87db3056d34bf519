package main

import (
	"github.com/taldoflemis/fornello/ordini"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Address  string `json:"address"`
}

type NewOrderRequest struct {
	Pizza    string `json:"pizza"`
	Username string `json:"username,omitempty"`
	Address  string `json:"address,omitempty"`
}

type AddPizzaRequest struct {
	Pizza string `json:"pizza"`
}

type NewOrderResponse struct {
	OrderID int `json:"order_id"`
}

type OrderStatusResponse struct {
	Pizza   string        `json:"pizza"`
	Status  ordini.Status `json:"status"`
	Address string        `json:"address"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
