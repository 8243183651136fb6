package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"streamaccts/internal/model"
)

type productFirestoreImpl struct {
	fs *firestore.Client
}

func NewFirestoreProductRepository(fs *firestore.Client) ProductRepository {
	return &productFirestoreImpl{
		fs: fs,
	}
}

func (r *productFirestoreImpl) Seed(ctx context.Context, products []*model.Product) error {
	for _, p := range products {
		_, err := r.fs.Collection(productsCollection).Doc(p.ID).Create(ctx, p)
		if err != nil && status.Code(err) != codes.AlreadyExists {
			return err
		}
	}
	return nil
}

func (r *productFirestoreImpl) List(ctx context.Context, filter ProductFilter) ([]*model.Product, error) {
	query := r.fs.Collection(productsCollection).Query
	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}
	if filter.ActiveOnly {
		query = query.Where("isActive", "==", true)
	}

	products, err := collectProducts(query.Documents(ctx))
	if err != nil {
		return nil, err
	}

	// ordered in memory so filtered queries need no composite index
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	return products, nil
}

func (r *productFirestoreImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	snap, err := r.fs.Collection(productsCollection).Doc(productID).Get(ctx)
	if err != nil {
		return nil, translateFirestore(err)
	}

	var product model.Product
	if err := snap.DataTo(&product); err != nil {
		return nil, err
	}
	product.ID = snap.Ref.ID

	return &product, nil
}

func (r *productFirestoreImpl) Create(ctx context.Context, product *model.Product) error {
	_, err := r.fs.Collection(productsCollection).Doc(product.ID).Create(ctx, product)
	return err
}

func (r *productFirestoreImpl) Save(ctx context.Context, product *model.Product) error {
	_, err := r.fs.Collection(productsCollection).Doc(product.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: product.Name},
		{Path: "description", Value: product.Description},
		{Path: "price", Value: product.Price},
		{Path: "stockCount", Value: product.StockCount},
		{Path: "category", Value: product.Category},
		{Path: "imageUrl", Value: product.ImageURL},
		{Path: "isActive", Value: product.IsActive},
		{Path: "updatedAt", Value: product.UpdatedAt},
	})
	return translateFirestore(err)
}

func (r *productFirestoreImpl) SoftDelete(ctx context.Context, productID string) error {
	_, err := r.fs.Collection(productsCollection).Doc(productID).Update(ctx, []firestore.Update{
		{Path: "isActive", Value: false},
		{Path: "updatedAt", Value: time.Now()},
	})
	return translateFirestore(err)
}

func (r *productFirestoreImpl) Count(ctx context.Context) (int64, int64, error) {
	products, err := collectProducts(r.fs.Collection(productsCollection).Documents(ctx))
	if err != nil {
		return 0, 0, err
	}

	var active int64
	for _, p := range products {
		if p.IsActive {
			active++
		}
	}

	return int64(len(products)), active, nil
}

func (r *productFirestoreImpl) LowStock(ctx context.Context, threshold int) ([]*model.Product, error) {
	query := r.fs.Collection(productsCollection).
		Where("isActive", "==", true).
		Where("stockCount", "<=", threshold).
		OrderBy("stockCount", firestore.Asc)

	return collectProducts(query.Documents(ctx))
}

func collectProducts(it *firestore.DocumentIterator) ([]*model.Product, error) {
	defer it.Stop()

	var products []*model.Product
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var product model.Product
		if err := doc.DataTo(&product); err != nil {
			return nil, err
		}
		product.ID = doc.Ref.ID
		products = append(products, &product)
	}

	return products, nil
}
