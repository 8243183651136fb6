package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"streamaccts/internal/client"
	"streamaccts/internal/dto"
	"streamaccts/internal/events"
	"streamaccts/internal/model"
	"streamaccts/internal/repository"
	"streamaccts/internal/storage"
)

var errOrderFulfilled = Conflict("Order already fulfilled")

type FulfillmentService interface {
	Fulfill(ctx context.Context, admin *model.Identity, orderID string, req dto.FulfillRequest) (*model.Order, error)
}

type fulfillmentServiceImpl struct {
	orderRepo  repository.OrderRepository
	uploader   storage.Uploader
	mailClient client.MailClient
	publisher  events.Publisher
	baseURL    string
	log        logrus.FieldLogger
}

func NewFulfillmentService(
	orderRepo repository.OrderRepository,
	uploader storage.Uploader,
	mailClient client.MailClient,
	publisher events.Publisher,
	baseURL string,
	log logrus.FieldLogger,
) FulfillmentService {
	return &fulfillmentServiceImpl{
		orderRepo:  orderRepo,
		uploader:   uploader,
		mailClient: mailClient,
		publisher:  publisher,
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// Fulfill attaches credentials and a proof screenshot to an order and marks
// it fulfilled. Every check runs before anything is written. The customer
// email is best effort: a delivery failure is logged and the fulfillment
// stands.
func (s *fulfillmentServiceImpl) Fulfill(ctx context.Context, admin *model.Identity, orderID string, req dto.FulfillRequest) (*model.Order, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || req.Screenshot == nil || len(req.Screenshot.Data) == 0 {
		return nil, Invalid("Email, password and screenshot are required")
	}
	if !req.AccountTested {
		return nil, Invalid("Account must be tested before fulfillment")
	}

	contentType, ext, err := storage.DetectImage(req.Screenshot.Data)
	if err != nil {
		return nil, Invalid(err.Error())
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundAs(err, "Order", "find order")
	}
	if order.Fulfillment != nil {
		return nil, errOrderFulfilled
	}

	key := fmt.Sprintf("screenshots/%s-%d%s", order.ID, time.Now().UnixMilli(), ext)
	screenshotURL, err := s.uploader.Upload(ctx, key, contentType, req.Screenshot.Data)
	if err != nil {
		return nil, fmt.Errorf("store screenshot: %w", err)
	}

	now := time.Now()
	credentials := model.AccountCredentials{
		Email:          strings.TrimSpace(req.Email),
		Password:       req.Password,
		AdditionalInfo: req.AdditionalInfo,
	}
	fulfillment := &model.OrderFulfillment{
		AccountDetails: credentials,
		ScreenshotURL:  screenshotURL,
		AccountTested:  true,
		FulfilledBy:    admin.UID,
		FulfilledAt:    now,
		Notes:          req.Notes,
	}
	delivered := make([]model.DeliveredAccount, 0, len(order.Items))
	for _, item := range order.Items {
		delivered = append(delivered, model.DeliveredAccount{
			ProductID:   item.ProductID,
			Credentials: credentials,
			DeliveredAt: now,
		})
	}

	err = s.orderRepo.SaveFulfillment(ctx, order.ID, fulfillment, delivered)
	if errors.Is(err, repository.ErrAlreadyFulfilled) {
		return nil, errOrderFulfilled
	}
	if err != nil {
		return nil, notFoundAs(err, "Order", "save fulfillment")
	}

	order.Fulfillment = fulfillment
	order.DeliveredAccounts = delivered
	order.Status = model.OrderStatusFulfilled
	order.UpdatedAt = now

	s.notify(ctx, order)

	if err := s.publisher.PublishOrderEvent(ctx, events.NewOrderEvent(events.OrderFulfilled, order)); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("publish order event")
	}

	return order, nil
}

func (s *fulfillmentServiceImpl) notify(ctx context.Context, order *model.Order) {
	entry := s.log.WithField("order_id", order.ID)
	if order.UserEmail == "" {
		entry.Warn("order has no customer email, skipping notification")
		return
	}

	body, err := renderFulfilledMail(order, s.baseURL)
	if err != nil {
		entry.WithError(err).Error("render fulfillment email")
		return
	}

	err = s.mailClient.Send(ctx, client.Mail{
		To:      order.UserEmail,
		Subject: "Your StreamAccts order is ready",
		HTML:    body,
	})
	if err != nil {
		entry.WithError(err).Error("send fulfillment email")
		return
	}
	entry.Info("fulfillment email sent")
}

var fulfilledMail = template.Must(template.New("fulfilled").Parse(`<h2>Your order is ready</h2>
<p>Order <strong>{{.Order.ID}}</strong> has been fulfilled.</p>
<ul>
{{range .Order.Items}}<li>{{.ProductName}} &times; {{.Quantity}}</li>
{{end}}</ul>
<p><strong>Email:</strong> {{.Order.Fulfillment.AccountDetails.Email}}<br>
<strong>Password:</strong> {{.Order.Fulfillment.AccountDetails.Password}}</p>
{{with .Order.Fulfillment.AccountDetails.AdditionalInfo}}<p>{{.}}</p>
{{end}}{{with .Order.Fulfillment.Notes}}<p><em>{{.}}</em></p>
{{end}}<p>You can view your credentials any time from <a href="{{.DashboardURL}}">your dashboard</a>.</p>
`))

func renderFulfilledMail(order *model.Order, baseURL string) (string, error) {
	var buf bytes.Buffer
	err := fulfilledMail.Execute(&buf, struct {
		Order        *model.Order
		DashboardURL string
	}{
		Order:        order,
		DashboardURL: baseURL + "/dashboard",
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
