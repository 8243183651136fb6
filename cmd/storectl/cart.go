package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"streamaccts/internal/cart"
	"streamaccts/internal/dto"
	"streamaccts/internal/model"
)

func defaultCartPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cart.json"
	}
	return filepath.Join(home, ".streamaccts", "cart.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runCart(args []string) {
	if len(args) < 1 {
		fmt.Println("expected cart add|remove|set|show|clear|checkout")
		os.Exit(1)
	}

	cmd := flag.NewFlagSet("cart "+args[0], flag.ExitOnError)
	path := cmd.String("file", defaultCartPath(), "Cart file")
	api := cmd.String("api", envOr("STOREFRONT_API", "http://localhost:3000"), "API base URL")
	token := cmd.String("token", os.Getenv("STOREFRONT_TOKEN"), "Bearer token for checkout")
	productID := cmd.String("product", "", "Product id")
	qty := cmd.Int("qty", 1, "Quantity")
	method := cmd.String("method", "paypal", "Payment method for checkout: stripe or paypal")
	paymentID := cmd.String("payment-id", "", "Use an existing payment id instead of creating one")
	note := cmd.String("message", "", "Message attached to the order")
	cmd.Parse(args[1:])

	c, err := cart.Load(*path)
	if err != nil {
		log.Fatalf("Failed to load cart: %v", err)
	}
	client := newAPIClient(*api, *token)

	switch args[0] {
	case "add":
		requireProduct(cmd, *productID)
		var product model.Product
		if err := client.do(http.MethodGet, "/api/products/"+url.PathEscape(*productID), nil, &product); err != nil {
			log.Fatalf("Failed to load product: %v", err)
		}
		if err := c.Add(product, *qty); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s added to cart!\n", product.Name)
	case "remove":
		requireProduct(cmd, *productID)
		if !c.Remove(*productID) {
			log.Fatalf("%s is not in the cart", *productID)
		}
	case "set":
		requireProduct(cmd, *productID)
		if err := c.UpdateQuantity(*productID, *qty); err != nil {
			log.Fatal(err)
		}
	case "show":
	case "clear":
		c.Clear()
	case "checkout":
		checkout(client, c, *method, *paymentID, *note)
	default:
		fmt.Println("expected cart add|remove|set|show|clear|checkout")
		os.Exit(1)
	}

	if err := cart.Save(*path, c); err != nil {
		log.Fatalf("Failed to save cart: %v", err)
	}
	printCart(c)
}

func requireProduct(cmd *flag.FlagSet, productID string) {
	if productID == "" {
		fmt.Println("product is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}
}

// checkout pays through the API then records the order and empties the cart.
func checkout(client *apiClient, c *cart.Cart, method, paymentID, note string) {
	if c.Empty() {
		log.Fatal("cart is empty")
	}
	amount := c.TotalAmount()

	if paymentID == "" {
		switch model.PaymentMethod(method) {
		case model.PaymentMethodPaypal:
			var resp dto.PaypalOrderResponse
			if err := client.do(http.MethodPost, "/api/payments/paypal/create-order", dto.AmountRequest{Amount: amount}, &resp); err != nil {
				log.Fatalf("Failed to create PayPal order: %v", err)
			}
			if resp.ApproveURL != "" {
				fmt.Printf("Approve the payment at %s then rerun with -payment-id %s\n", resp.ApproveURL, resp.OrderID)
				os.Exit(0)
			}
			paymentID = resp.OrderID
		case model.PaymentMethodStripe:
			var resp dto.StripeIntentResponse
			if err := client.do(http.MethodPost, "/api/payments/stripe/create-intent", dto.AmountRequest{Amount: amount}, &resp); err != nil {
				log.Fatalf("Failed to create payment intent: %v", err)
			}
			paymentID = resp.PaymentIntentID
		default:
			log.Fatalf("unknown payment method %q", method)
		}
	}

	var order model.Order
	err := client.do(http.MethodPost, "/api/orders", dto.CreateOrderRequest{
		Items:         c.OrderItems(),
		TotalAmount:   amount.Round(2).InexactFloat64(),
		PaymentMethod: method,
		PaymentID:     paymentID,
		UserMessage:   note,
	}, &order)
	if err != nil {
		log.Fatalf("Failed to create order: %v", err)
	}

	fmt.Printf("Order %s created (%s).\n", order.ID, order.Status)
	c.Clear()
}

func printCart(c *cart.Cart) {
	if c.Empty() {
		fmt.Println("Cart is empty.")
		return
	}
	for _, item := range c.Items {
		fmt.Printf("  %-36s %-30s x%-3d %8.2f\n", item.ProductID, item.Product.Name, item.Quantity, item.Product.Price*float64(item.Quantity))
	}
	fmt.Printf("  %-36s %-30s %13.2f\n", "", "Total", c.Total)
}
