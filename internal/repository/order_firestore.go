package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"streamaccts/internal/model"
)

type orderFirestoreImpl struct {
	fs *firestore.Client
}

func NewFirestoreOrderRepository(fs *firestore.Client) OrderRepository {
	return &orderFirestoreImpl{
		fs: fs,
	}
}

// Create stores the order and applies the clamped stock decrements inside a
// single Firestore transaction. Lines for the same product are merged first
// and all product reads happen before any write.
func (r *orderFirestoreImpl) Create(ctx context.Context, order *model.Order, decrements []model.StockDecrement) error {
	products := r.fs.Collection(productsCollection)
	orderRef := r.fs.Collection(ordersCollection).Doc(order.ID)

	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		type pending struct {
			ref   *firestore.DocumentRef
			stock int
		}
		var updates []pending

		for _, d := range model.MergeDecrements(decrements) {
			ref := products.Doc(d.ProductID)
			snap, err := tx.Get(ref)
			if status.Code(err) == codes.NotFound {
				continue
			}
			if err != nil {
				return err
			}

			var product model.Product
			if err := snap.DataTo(&product); err != nil {
				return err
			}

			stock := product.StockCount - d.Quantity
			if stock < 0 {
				stock = 0
			}
			updates = append(updates, pending{ref: ref, stock: stock})
		}

		if err := tx.Create(orderRef, order); err != nil {
			return err
		}

		now := time.Now()
		for _, u := range updates {
			err := tx.Update(u.ref, []firestore.Update{
				{Path: "stockCount", Value: u.stock},
				{Path: "updatedAt", Value: now},
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *orderFirestoreImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	snap, err := r.fs.Collection(ordersCollection).Doc(orderID).Get(ctx)
	if err != nil {
		return nil, translateFirestore(err)
	}

	var order model.Order
	if err := snap.DataTo(&order); err != nil {
		return nil, err
	}
	order.ID = snap.Ref.ID

	return &order, nil
}

func (r *orderFirestoreImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	query := r.fs.Collection(ordersCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)

	return collectOrders(query.Documents(ctx))
}

func (r *orderFirestoreImpl) ListAll(ctx context.Context) ([]*model.Order, error) {
	query := r.fs.Collection(ordersCollection).OrderBy("createdAt", firestore.Desc)
	return collectOrders(query.Documents(ctx))
}

func (r *orderFirestoreImpl) UpdateStatus(ctx context.Context, orderID string, orderStatus model.OrderStatus) error {
	return r.update(ctx, orderID, firestore.Update{Path: "status", Value: string(orderStatus)})
}

func (r *orderFirestoreImpl) SetAdminResponse(ctx context.Context, orderID string, response string) error {
	return r.update(ctx, orderID, firestore.Update{Path: "adminResponse", Value: response})
}

func (r *orderFirestoreImpl) SetUserMessage(ctx context.Context, orderID string, message string) error {
	return r.update(ctx, orderID, firestore.Update{Path: "userMessage", Value: message})
}

// SaveFulfillment checks and writes inside one transaction so an existing
// fulfillment is never overwritten.
func (r *orderFirestoreImpl) SaveFulfillment(ctx context.Context, orderID string, fulfillment *model.OrderFulfillment, delivered []model.DeliveredAccount) error {
	ref := r.fs.Collection(ordersCollection).Doc(orderID)

	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translateFirestore(err)
		}

		var current model.Order
		if err := snap.DataTo(&current); err != nil {
			return err
		}
		if current.Fulfillment != nil {
			return ErrAlreadyFulfilled
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "fulfillment", Value: fulfillment},
			{Path: "deliveredAccounts", Value: delivered},
			{Path: "status", Value: string(model.OrderStatusFulfilled)},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
}

func (r *orderFirestoreImpl) StatusCounts(ctx context.Context) (map[model.OrderStatus]int64, error) {
	orders, err := collectOrders(r.fs.Collection(ordersCollection).Documents(ctx))
	if err != nil {
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64)
	for _, o := range orders {
		counts[o.Status]++
	}

	return counts, nil
}

func (r *orderFirestoreImpl) Revenue(ctx context.Context, statuses []model.OrderStatus) (float64, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	orders, err := collectOrders(r.fs.Collection(ordersCollection).Where("status", "in", values).Documents(ctx))
	if err != nil {
		return 0, err
	}

	var revenue float64
	for _, o := range orders {
		revenue += o.TotalAmount
	}

	return revenue, nil
}

func (r *orderFirestoreImpl) update(ctx context.Context, orderID string, updates ...firestore.Update) error {
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now()})

	_, err := r.fs.Collection(ordersCollection).Doc(orderID).Update(ctx, updates)
	return translateFirestore(err)
}

func collectOrders(it *firestore.DocumentIterator) ([]*model.Order, error) {
	defer it.Stop()

	var orders []*model.Order
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var order model.Order
		if err := doc.DataTo(&order); err != nil {
			return nil, err
		}
		order.ID = doc.Ref.ID
		orders = append(orders, &order)
	}

	return orders, nil
}
