// Package app wires configuration into clients, repositories and services.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"streamaccts/internal/client"
	"streamaccts/internal/config"
	"streamaccts/internal/events"
	"streamaccts/internal/repository"
	"streamaccts/internal/server"
	"streamaccts/internal/service"
	"streamaccts/internal/storage"
)

type App struct {
	Config       *config.Config
	Log          *logrus.Logger
	Auth         client.Authenticator
	Repositories repository.Repositories
	Services     server.Services
	Publisher    events.Publisher
	Mail         client.MailClient

	closers []func() error
}

var (
	ErrDemoModeInProduction = errors.New("firebase credentials are required in production")
	ErrMissingDevSecret     = errors.New("AUTH_DEV_JWT_SECRET is required when firebase is not configured")
)

// Build connects every backend the configuration enables. Without Firebase
// credentials the app runs in demo mode on locally signed tokens and local
// disk storage; demo mode is refused in production.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	if !cfg.Firebase.Enabled() {
		if cfg.Environment.IsProduction() {
			return nil, ErrDemoModeInProduction
		}
		if strings.TrimSpace(cfg.Auth.DevJWTSecret) == "" {
			return nil, ErrMissingDevSecret
		}
	}

	a := &App{Config: cfg, Log: log}

	var firebaseClient *client.FirebaseClient
	if cfg.Firebase.Enabled() {
		fb, err := client.NewFirebaseClient(ctx, &cfg.Firebase)
		if err != nil {
			return nil, err
		}
		firebaseClient = fb
		a.Auth = fb
		log.WithField("project", cfg.Firebase.ProjectID).Info("Firebase Admin initialized")
	} else {
		a.Auth = client.NewDevTokenClient(cfg.Auth.DevJWTSecret)
		log.Warn("Firebase credentials not found, running in demo mode with locally signed tokens")
	}

	if err := a.openRepositories(ctx, firebaseClient); err != nil {
		a.Close()
		return nil, err
	}

	var uploader storage.Uploader
	local := storage.NewLocalUploader(cfg.Storage.UploadDir)
	if firebaseClient != nil {
		bucket, name, err := firebaseClient.Bucket(ctx)
		if err != nil {
			log.WithError(err).Warn("Firebase Storage unavailable, uploads go to local disk")
			uploader = storage.NewFallbackUploader(nil, local, log)
		} else {
			uploader = storage.NewFallbackUploader(storage.NewBucketUploader(bucket, name), local, log)
		}
	} else {
		uploader = storage.NewFallbackUploader(nil, local, log)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, log)
		if err != nil {
			log.WithError(err).Warn("Kafka unavailable, order events disabled")
			a.Publisher = events.NewNoopPublisher()
		} else {
			a.Publisher = producer
			a.closers = append(a.closers, producer.Close)
		}
	} else {
		a.Publisher = events.NewNoopPublisher()
	}

	if cfg.SMTP.Enabled() {
		a.Mail = client.NewMailClient(&cfg.SMTP)
	} else {
		log.Warn("SMTP credentials not set, fulfillment emails will not be delivered")
		a.Mail = client.NewDisabledMailClient()
	}

	var stripeClient client.StripeClient
	if cfg.Stripe.SecretKey != "" {
		stripeClient = client.NewStripeClient(&cfg.Stripe)
	}
	var paypalClient client.PaypalClient
	if cfg.Paypal.Enabled() {
		paypalClient = client.NewPaypalClient(&cfg.Paypal, cfg.BaseURL)
	}
	var braintreeClient client.BraintreeClient
	if cfg.BrainTree.Enabled() {
		braintreeClient = client.NewBraintreeClient(&cfg.BrainTree)
	}

	repos := a.Repositories
	a.Services = server.Services{
		Products:    service.NewProductService(repos.Products, uploader),
		Orders:      service.NewOrderService(repos.Orders, a.Publisher, log),
		Fulfillment: service.NewFulfillmentService(repos.Orders, uploader, a.Mail, a.Publisher, cfg.BaseURL, log),
		Payments:    service.NewPaymentService(stripeClient, paypalClient, braintreeClient, log),
		Users:       service.NewUserService(a.Auth, repos.Users, log),
		Stats:       service.NewStatsService(repos.Orders, repos.Products),
	}

	return a, nil
}

func (a *App) openRepositories(ctx context.Context, fb *client.FirebaseClient) error {
	if a.Config.Database.Driver == "firestore" {
		if fb == nil {
			return fmt.Errorf("firestore driver needs Firebase credentials")
		}
		fs, err := fb.Firestore(ctx)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, fs.Close)
		a.Repositories = repository.NewFirestoreRepositories(fs)
		return nil
	}

	db, err := client.OpenDatabase(a.Config.Database, a.Log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	a.closers = append(a.closers, sqlDB.Close)
	a.Repositories = repository.NewGormRepositories(db)
	return nil
}

func (a *App) Server() *server.Server {
	return server.NewServer(a.Config, a.Auth, a.Services, a.Log)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.WithError(err).Warn("close resource")
		}
	}
	a.closers = nil
}
