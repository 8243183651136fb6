package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamaccts/internal/client"
	"streamaccts/internal/config"
	"streamaccts/internal/model"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Stack   []string        `json:"stack"`
	Path    string          `json:"path"`
}

type testApp struct {
	t       *testing.T
	app     *App
	handler http.Handler
	tokens  *client.DevTokenClient
	uploads string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	uploads := t.TempDir()
	cfg := &config.Config{
		Environment: config.Environment{Name: "test"},
		HTTP: config.HTTPServer{
			CORSOrigin: "http://localhost:5173",
			BodyLimit:  "10M",
		},
		BaseURL:  "http://localhost:3000",
		Database: config.Database{Driver: "sqlite", URL: "file:" + uuid.NewString() + "?mode=memory&cache=shared"},
		Auth:     config.Auth{DevJWTSecret: "test-secret"},
		Storage:  config.Storage{UploadDir: uploads},
	}

	log, _ := test.NewNullLogger()
	a, err := Build(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	tokens, ok := a.Auth.(*client.DevTokenClient)
	require.True(t, ok, "demo mode uses locally signed tokens")

	return &testApp{t: t, app: a, handler: a.Server().Handler(), tokens: tokens, uploads: uploads}
}

func (ta *testApp) token(uid string, isAdmin bool) string {
	ta.t.Helper()
	token, err := ta.tokens.Issue(model.Identity{UID: uid, Email: uid + "@example.com", Name: uid, IsAdmin: isAdmin}, time.Hour)
	require.NoError(ta.t, err)
	return token
}

func (ta *testApp) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	ta.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ta.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return ta.serve(req, token)
}

func (ta *testApp) serve(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	ta.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(ta.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func screenshotForm(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withFile {
		part, err := w.CreateFormFile("screenshot", "proof.png")
		require.NoError(t, err)
		require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestBuildRefusesDemoModeInProduction(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := &config.Config{
		Environment: config.Environment{Name: "production"},
		Database:    config.Database{Driver: "sqlite", URL: "file:" + uuid.NewString() + "?mode=memory&cache=shared"},
		Auth:        config.Auth{DevJWTSecret: "dev-secret-change-me"},
		Storage:     config.Storage{UploadDir: t.TempDir()},
	}

	a, err := Build(context.Background(), cfg, log)
	assert.ErrorIs(t, err, ErrDemoModeInProduction)
	assert.Nil(t, a)
}

func TestBuildRequiresDevSecretWithoutFirebase(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := &config.Config{
		Environment: config.Environment{Name: "development"},
		Database:    config.Database{Driver: "sqlite", URL: "file:" + uuid.NewString() + "?mode=memory&cache=shared"},
		Storage:     config.Storage{UploadDir: t.TempDir()},
	}

	_, err := Build(context.Background(), cfg, log)
	assert.ErrorIs(t, err, ErrMissingDevSecret)
}

func TestForeignSecretCannotReachAdminRoutes(t *testing.T) {
	ta := newTestApp(t)

	forged, err := client.NewDevTokenClient("dev-secret-change-me").Issue(model.Identity{UID: "mallory", IsAdmin: true}, time.Hour)
	require.NoError(t, err)

	rec, env := ta.do(http.MethodGet, "/api/orders/admin/all", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", env.Message)
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)

	rec, _ := ta.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)
}

func TestUnknownRoute(t *testing.T) {
	ta := newTestApp(t)

	rec, env := ta.do(http.MethodGet, "/api/nope?x=1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route /api/nope?x=1 not found", env.Message)
	assert.Equal(t, "/api/nope", env.Path)
}

func TestAuthRequired(t *testing.T) {
	ta := newTestApp(t)

	rec, env := ta.do(http.MethodGet, "/api/orders/user/u1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token provided", env.Message)

	rec, env = ta.do(http.MethodGet, "/api/orders/user/u1", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", env.Message)

	expired, err := ta.tokens.Issue(model.Identity{UID: "u1"}, -time.Minute)
	require.NoError(t, err)
	rec, _ = ta.do(http.MethodGet, "/api/orders/user/u1", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	ta := newTestApp(t)
	customer := ta.token("u1", false)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/orders/admin/all"},
		{http.MethodGet, "/api/orders/admin/stats"},
		{http.MethodPatch, "/api/orders/admin/o1/status"},
		{http.MethodPatch, "/api/orders/admin/o1/response"},
		{http.MethodPost, "/api/orders/o1/fulfill"},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/p1"},
		{http.MethodDelete, "/api/products/p1"},
		{http.MethodPost, "/api/auth/set-claims"},
		{http.MethodPatch, "/api/users/u2/admin"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec, env := ta.do(r.method, r.path, customer, map[string]string{})
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "Admin access required", env.Message)
		})
	}
}

func TestVerifyEndpoint(t *testing.T) {
	ta := newTestApp(t)

	rec, env := ta.do(http.MethodPost, "/api/auth/verify", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token is required", env.Message)

	rec, env = ta.do(http.MethodPost, "/api/auth/verify", "", map[string]string{"token": ta.token("u1", false)})
	require.Equal(t, http.StatusOK, rec.Code)

	var user struct {
		UID     string `json:"uid"`
		IsAdmin bool   `json:"isAdmin"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "u1", user.UID)
	assert.False(t, user.IsAdmin)
}

func TestCheckoutAndFulfillFlow(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	customer := ta.token("buyer", false)
	admin := ta.token("admin", true)

	_, err := ta.app.Services.Products.Seed(ctx)
	require.NoError(t, err)

	rec, env := ta.do(http.MethodGet, "/api/products?active=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []model.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 6)

	rec, env = ta.do(http.MethodPost, "/api/payments/paypal/create-order", customer, map[string]string{"amount": "15.99"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var paypal struct {
		OrderID string `json:"orderID"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &paypal))
	assert.True(t, strings.HasPrefix(paypal.OrderID, "paypal_"))

	rec, env = ta.do(http.MethodPost, "/api/orders", customer, map[string]interface{}{
		"items": []map[string]interface{}{{
			"productId": "netflix-premium", "productName": "Netflix Premium Account",
			"quantity": 1, "unitPrice": 15.99, "totalPrice": 15.99,
		}},
		"totalAmount":   15.99,
		"paymentMethod": "paypal",
		"paymentId":     paypal.OrderID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order model.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, model.OrderStatusPaid, order.Status)

	rec, _ = ta.do(http.MethodGet, "/api/orders/"+order.ID, ta.token("stranger", false), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body, contentType := screenshotForm(t, map[string]string{"email": "acct@example.com", "password": "pw"}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/"+order.ID+"/fulfill", body)
	req.Header.Set("Content-Type", contentType)
	rec, env = ta.serve(req, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Account must be tested before fulfillment", env.Message)

	body, contentType = screenshotForm(t, map[string]string{"email": "acct@example.com", "password": "pw", "accountTested": "true"}, false)
	req = httptest.NewRequest(http.MethodPost, "/api/orders/"+order.ID+"/fulfill", body)
	req.Header.Set("Content-Type", contentType)
	rec, env = ta.serve(req, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email, password and screenshot are required", env.Message)

	body, contentType = screenshotForm(t, map[string]string{"email": "acct@example.com", "password": "pw", "accountTested": "true"}, true)
	req = httptest.NewRequest(http.MethodPost, "/api/orders/"+order.ID+"/fulfill", body)
	req.Header.Set("Content-Type", contentType)
	rec, env = ta.serve(req, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fulfilled model.Order
	require.NoError(t, json.Unmarshal(env.Data, &fulfilled))
	assert.Equal(t, model.OrderStatusFulfilled, fulfilled.Status)
	require.NotNil(t, fulfilled.Fulfillment)

	url := fulfilled.Fulfillment.ScreenshotURL
	require.True(t, strings.HasPrefix(url, "/uploads/screenshots/"), url)
	_, err = os.Stat(filepath.Join(ta.uploads, strings.TrimPrefix(url, "/uploads/")))
	assert.NoError(t, err)

	rec, _ = ta.do(http.MethodGet, url, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body, contentType = screenshotForm(t, map[string]string{"email": "acct@example.com", "password": "pw", "accountTested": "true"}, true)
	req = httptest.NewRequest(http.MethodPost, "/api/orders/"+order.ID+"/fulfill", body)
	req.Header.Set("Content-Type", contentType)
	rec, _ = ta.serve(req, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = ta.do(http.MethodGet, "/api/orders/user/buyer", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []model.Order
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "pw", mine[0].DeliveredAccounts[0].Credentials.Password)

	rec, env = ta.do(http.MethodGet, "/api/products/netflix-premium", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var netflix model.Product
	require.NoError(t, json.Unmarshal(env.Data, &netflix))
	assert.Equal(t, 9, netflix.StockCount)
}

func TestAdminStatusUpdate(t *testing.T) {
	ta := newTestApp(t)
	customer := ta.token("buyer", false)
	admin := ta.token("admin", true)

	rec, env := ta.do(http.MethodPost, "/api/orders", customer, map[string]interface{}{
		"items":         []map[string]interface{}{{"productId": "p", "quantity": 1, "totalPrice": 5}},
		"totalAmount":   5,
		"paymentMethod": "stripe",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order model.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))

	rec, env = ta.do(http.MethodPatch, "/api/orders/admin/"+order.ID+"/status", admin, map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", env.Message)

	rec, env = ta.do(http.MethodPatch, "/api/orders/admin/"+order.ID+"/status", admin, map[string]string{"status": "processing"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order status updated", env.Message)

	rec, _ = ta.do(http.MethodPatch, "/api/orders/admin/missing/status", admin, map[string]string{"status": "processing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = ta.do(http.MethodGet, "/api/orders/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"processing":1`)
}

func TestPromoteAdminTakesEffectOnNextRequest(t *testing.T) {
	ta := newTestApp(t)
	admin := ta.token("admin", true)
	user := ta.token("u1", false)

	rec, _ := ta.do(http.MethodPost, "/api/auth/verify", "", map[string]string{"token": user})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := ta.do(http.MethodPatch, "/api/users/u1/admin", admin, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "isAdmin is required", env.Message)

	rec, _ = ta.do(http.MethodPatch, "/api/users/u1/admin", admin, map[string]interface{}{"isAdmin": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ta.do(http.MethodGet, "/api/orders/admin/all", user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProviderNotConfigured(t *testing.T) {
	ta := newTestApp(t)

	rec, env := ta.do(http.MethodPost, "/api/payments/stripe/create-intent", ta.token("u1", false), map[string]string{"amount": "10"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
}

func TestFeesEndpoint(t *testing.T) {
	ta := newTestApp(t)

	rec, env := ta.do(http.MethodGet, "/api/payments/fees?amount=50", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"best"`)

	rec, env = ta.do(http.MethodGet, "/api/payments/fees?amount=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid amount", env.Message)
}
