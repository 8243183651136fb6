package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"streamaccts/internal/config"
	"streamaccts/internal/model"
)

type FirebaseClient struct {
	app    *firebase.App
	auth   *auth.Client
	bucket string
}

func NewFirebaseClient(ctx context.Context, cfg *config.Firebase) (*FirebaseClient, error) {
	credentials, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.Bucket(),
	}, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	return &FirebaseClient{
		app:    app,
		auth:   authClient,
		bucket: cfg.Bucket(),
	}, nil
}

// serviceAccountJSON rebuilds a service account document from env values.
// Private keys copied into .env files usually carry literal \n sequences.
func serviceAccountJSON(cfg *config.Firebase) ([]byte, error) {
	b, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n"),
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal service account: %w", err)
	}
	return b, nil
}

func (c *FirebaseClient) Verify(ctx context.Context, token string) (*model.Identity, error) {
	decoded, err := c.auth.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	// claims in the token lag behind SetCustomClaims until refresh, the user record does not
	user, err := c.auth.GetUser(ctx, decoded.UID)
	if err != nil {
		return nil, fmt.Errorf("get auth user: %w", err)
	}

	email, _ := decoded.Claims["email"].(string)
	name, _ := decoded.Claims["name"].(string)

	return &model.Identity{
		UID:     decoded.UID,
		Email:   email,
		Name:    name,
		IsAdmin: isAdminClaim(user.CustomClaims),
	}, nil
}

func (c *FirebaseClient) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if err := c.auth.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return fmt.Errorf("set custom claims: %w", err)
	}
	return nil
}

func (c *FirebaseClient) UserByEmail(ctx context.Context, email string) (*model.Identity, error) {
	user, err := c.auth.GetUserByEmail(ctx, email)
	if auth.IsUserNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &model.Identity{
		UID:     user.UID,
		Email:   user.Email,
		Name:    user.DisplayName,
		IsAdmin: isAdminClaim(user.CustomClaims),
	}, nil
}

func (c *FirebaseClient) Firestore(ctx context.Context) (*firestore.Client, error) {
	fs, err := c.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}
	return fs, nil
}

func (c *FirebaseClient) Bucket(ctx context.Context) (*gcs.BucketHandle, string, error) {
	storageClient, err := c.app.Storage(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("init firebase storage: %w", err)
	}

	bucket, err := storageClient.Bucket(c.bucket)
	if err != nil {
		return nil, "", fmt.Errorf("open bucket %s: %w", c.bucket, err)
	}

	return bucket, c.bucket, nil
}
