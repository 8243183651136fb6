package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by every backend when the addressed record does
// not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyFulfilled is returned when a fulfillment would overwrite an
// existing one.
var ErrAlreadyFulfilled = errors.New("order already fulfilled")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products: NewProductRepository(db),
		Orders:   NewOrderRepository(db),
		Users:    NewUserRepository(db),
	}
}
