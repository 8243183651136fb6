package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"streamaccts/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order, decrements []model.StockDecrement) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	ListAll(ctx context.Context) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	SetAdminResponse(ctx context.Context, orderID string, response string) error
	SetUserMessage(ctx context.Context, orderID string, message string) error
	SaveFulfillment(ctx context.Context, orderID string, fulfillment *model.OrderFulfillment, delivered []model.DeliveredAccount) error
	StatusCounts(ctx context.Context) (map[model.OrderStatus]int64, error)
	Revenue(ctx context.Context, statuses []model.OrderStatus) (float64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// Create writes the order and takes stock off every referenced product in
// one transaction. Each decrement is a single conditional UPDATE clamped at
// zero; nothing is reserved, so concurrent orders may oversell.
func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order, decrements []model.StockDecrement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		now := time.Now()
		for _, d := range decrements {
			err := tx.Model(&model.Product{}).
				Where("id = ?", d.ProductID).
				Updates(map[string]interface{}{
					"stock_count": gorm.Expr("CASE WHEN stock_count > ? THEN stock_count - ? ELSE 0 END", d.Quantity, d.Quantity),
					"updated_at":  now,
				}).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, translate(err)
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListAll(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	return r.update(ctx, orderID, map[string]interface{}{
		"status": status,
	})
}

func (r *orderRepoImpl) SetAdminResponse(ctx context.Context, orderID string, response string) error {
	return r.update(ctx, orderID, map[string]interface{}{
		"admin_response": response,
	})
}

func (r *orderRepoImpl) SetUserMessage(ctx context.Context, orderID string, message string) error {
	return r.update(ctx, orderID, map[string]interface{}{
		"user_message": message,
	})
}

// SaveFulfillment only writes orders that carry no fulfillment yet, so of two
// concurrent fulfillments exactly one wins.
func (r *orderRepoImpl) SaveFulfillment(ctx context.Context, orderID string, fulfillment *model.OrderFulfillment, delivered []model.DeliveredAccount) error {
	// serializer:json columns are only applied through the model, not raw maps
	result := r.db.WithContext(ctx).
		Model(&model.Order{ID: orderID}).
		Where("(fulfillment IS NULL OR fulfillment = '' OR fulfillment = 'null')").
		Select("fulfillment", "delivered_accounts", "status", "updated_at").
		Updates(&model.Order{
			Fulfillment:       fulfillment,
			DeliveredAccounts: delivered,
			Status:            model.OrderStatusFulfilled,
			UpdatedAt:         time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, orderID); err != nil {
			return err
		}
		return ErrAlreadyFulfilled
	}

	return nil
}

func (r *orderRepoImpl) StatusCounts(ctx context.Context) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func (r *orderRepoImpl) Revenue(ctx context.Context, statuses []model.OrderStatus) (float64, error) {
	var revenue float64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("status IN ?", statuses).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error

	return revenue, err
}

func (r *orderRepoImpl) update(ctx context.Context, orderID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
