package repository

import (
	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	productsCollection = "products"
	ordersCollection   = "orders"
	usersCollection    = "users"
)

// Repositories bundles one implementation of every store so the server can be
// wired against either backend.
type Repositories struct {
	Products ProductRepository
	Orders   OrderRepository
	Users    UserRepository
}

func NewFirestoreRepositories(fs *firestore.Client) Repositories {
	return Repositories{
		Products: NewFirestoreProductRepository(fs),
		Orders:   NewFirestoreOrderRepository(fs),
		Users:    NewFirestoreUserRepository(fs),
	}
}

func translateFirestore(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}
