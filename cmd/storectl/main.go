package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"streamaccts/internal/app"
	"streamaccts/internal/client"
	"streamaccts/internal/config"
	"streamaccts/internal/logging"
	"streamaccts/internal/model"
)

const usage = `usage: storectl <command> [flags]

commands:
  set-admin      grant admin to a user (-email or -uid)
  seed-products  load the starter catalog
  test-email     send a test message with the SMTP settings
  dev-token      print a locally signed token for demo mode
  cart           add|remove|set|show|clear|checkout against the API`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}

	switch os.Args[1] {
	case "set-admin":
		setAdmin(cfg, os.Args[2:])
	case "seed-products":
		seedProducts(cfg)
	case "test-email":
		testEmail(cfg, os.Args[2:])
	case "dev-token":
		devToken(cfg, os.Args[2:])
	case "cart":
		runCart(os.Args[2:])
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func build(cfg *config.Config) *app.App {
	a, err := app.Build(context.Background(), cfg, logging.New(cfg.Log))
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	return a
}

func setAdmin(cfg *config.Config, args []string) {
	cmd := flag.NewFlagSet("set-admin", flag.ExitOnError)
	email := cmd.String("email", "", "Email of the user to promote")
	uid := cmd.String("uid", "", "Auth uid of the user to promote")
	cmd.Parse(args)

	if *email == "" && *uid == "" {
		fmt.Println("email or uid is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}

	a := build(cfg)
	defer a.Close()
	ctx := context.Background()

	if *uid != "" {
		if err := a.Services.Users.SetAdmin(ctx, *uid, true); err != nil {
			log.Fatalf("Failed to set admin status: %v", err)
		}
		fmt.Printf("%s is now an admin. They may need to sign in again.\n", *uid)
		return
	}

	identity, err := a.Services.Users.PromoteByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("Failed to set admin status: %v", err)
	}
	fmt.Printf("%s (%s) is now an admin. They may need to sign in again.\n", *email, identity.UID)
}

func seedProducts(cfg *config.Config) {
	a := build(cfg)
	defer a.Close()

	n, err := a.Services.Products.Seed(context.Background())
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}
	fmt.Printf("Seeded %d products (existing ids left untouched).\n", n)
}

func testEmail(cfg *config.Config, args []string) {
	cmd := flag.NewFlagSet("test-email", flag.ExitOnError)
	to := cmd.String("to", cfg.SMTP.User, "Recipient, defaults to the SMTP user")
	cmd.Parse(args)

	if !cfg.SMTP.Enabled() {
		log.Fatal("EMAIL_USER and EMAIL_PASSWORD must be set")
	}

	fmt.Printf("Email host: %s:%d, user: %s\n", cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User)

	err := client.NewMailClient(&cfg.SMTP).Send(context.Background(), client.Mail{
		To:      *to,
		Subject: "Test Email - StreamAccts",
		HTML: fmt.Sprintf(`<h2>Test Email</h2>
<p>This is a test email from your StreamAccts application.</p>
<p>If you receive this, your email configuration is working correctly!</p>
<p>Timestamp: %s</p>`, time.Now().UTC().Format(time.RFC3339)),
	})
	if err != nil {
		log.Fatalf("Email test failed: %v", err)
	}
	fmt.Println("Test email sent successfully!")
}

func devToken(cfg *config.Config, args []string) {
	cmd := flag.NewFlagSet("dev-token", flag.ExitOnError)
	uid := cmd.String("uid", "", "Subject of the token")
	email := cmd.String("email", "", "Email claim")
	name := cmd.String("name", "", "Display name claim")
	admin := cmd.Bool("admin", false, "Issue an admin token")
	ttl := cmd.Duration("ttl", 24*time.Hour, "Token lifetime")
	cmd.Parse(args)

	if *uid == "" {
		fmt.Println("uid is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}

	if cfg.Auth.DevJWTSecret == "" {
		log.Fatal("AUTH_DEV_JWT_SECRET is not set")
	}

	token, err := client.NewDevTokenClient(cfg.Auth.DevJWTSecret).Issue(model.Identity{
		UID:     *uid,
		Email:   *email,
		Name:    *name,
		IsAdmin: *admin,
	}, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
