package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

func main() {
	settings, err := LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	api := newAPIClient(settings.Client)
	stdin := bufio.NewReader(os.Stdin)

	for {
		fmt.Println()
		fmt.Println("Welcome to the Pizza Ordering App!")
		fmt.Println("Please select an option:")
		fmt.Println("1. List Menu")
		fmt.Println("2. Register")
		fmt.Println("3. Place Order")
		fmt.Println("4. Check Order Status")
		fmt.Println("5. Cancel Order")
		fmt.Println("6. Admin: Add Pizza to Menu")
		fmt.Println("7. Admin: Delete Pizza from Menu")
		fmt.Println("8. Admin: Cancel Any Order")
		fmt.Println("0. Exit")

		choice := prompt(stdin, "Enter your choice: ")

		switch choice {
		case "1":
			listMenu(api)
		case "2":
			registerUser(api, stdin)
		case "3":
			placeOrder(api, stdin)
		case "4":
			checkOrderStatus(api, stdin)
		case "5":
			cancelOrder(api, stdin)
		case "6":
			adminAddPizza(api, stdin)
		case "7":
			adminDeletePizza(api, stdin)
		case "8":
			adminCancelAnyOrder(api, stdin)
		case "0":
			fmt.Println("Exiting the application.")
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

func prompt(stdin *bufio.Reader, question string) string {
	fmt.Print(question)
	line, err := stdin.ReadString('\n')
	if err != nil {
		// stdin is gone, nothing sensible left to do interactively
		fmt.Println()
		os.Exit(0)
	}
	return strings.TrimSpace(line)
}

func listMenu(api *apiClient) {
	menu, err := api.ListMenu()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Menu:", menu)
}

func registerUser(api *apiClient, stdin *bufio.Reader) {
	username := prompt(stdin, "Enter your username: ")
	address := prompt(stdin, "Enter your address: ")

	message, err := api.Register(username, address)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(message)
}

func placeOrder(api *apiClient, stdin *bufio.Reader) {
	username := prompt(stdin, "Enter your username (leave blank if unregistered): ")
	pizza := prompt(stdin, "Enter the pizza name: ")
	address := ""
	if username == "" {
		address = prompt(stdin, "Enter your address: ")
	}

	orderID, err := api.PlaceOrder(pizza, username, address)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Order placed successfully! Order ID:", orderID)
}

func checkOrderStatus(api *apiClient, stdin *bufio.Reader) {
	orderID := prompt(stdin, "Enter your order ID: ")

	status, err := api.OrderStatus(orderID)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Order Status: pizza=%s status=%s address=%s\n", status.Pizza, status.Status, status.Address)
}

func cancelOrder(api *apiClient, stdin *bufio.Reader) {
	orderID := prompt(stdin, "Enter the order ID to cancel: ")

	message, err := api.CancelOrder(orderID)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(message)
}

func adminAddPizza(api *apiClient, stdin *bufio.Reader) {
	token := prompt(stdin, "Enter admin token: ")
	pizza := prompt(stdin, "Enter the pizza name to add: ")

	message, err := api.AddPizza(token, pizza)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(message)
}

func adminDeletePizza(api *apiClient, stdin *bufio.Reader) {
	token := prompt(stdin, "Enter admin token: ")
	pizzaID := prompt(stdin, "Enter the pizza ID to delete: ")

	message, err := api.DeletePizza(token, pizzaID)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(message)
}

func adminCancelAnyOrder(api *apiClient, stdin *bufio.Reader) {
	token := prompt(stdin, "Enter admin token: ")
	orderID := prompt(stdin, "Enter the order ID to cancel: ")

	message, err := api.AdminCancelOrder(token, orderID)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(message)
}
