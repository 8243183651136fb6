package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"streamaccts/internal/model"
)

type userFirestoreImpl struct {
	fs *firestore.Client
}

func NewFirestoreUserRepository(fs *firestore.Client) UserRepository {
	return &userFirestoreImpl{
		fs: fs,
	}
}

func (r *userFirestoreImpl) FindByID(ctx context.Context, userID string) (*model.User, error) {
	snap, err := r.fs.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, translateFirestore(err)
	}

	var user model.User
	if err := snap.DataTo(&user); err != nil {
		return nil, err
	}
	user.ID = snap.Ref.ID

	return &user, nil
}

func (r *userFirestoreImpl) Create(ctx context.Context, user *model.User) error {
	_, err := r.fs.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	return err
}

func (r *userFirestoreImpl) UpdateDisplayName(ctx context.Context, userID string, displayName string) error {
	_, err := r.fs.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "displayName", Value: displayName},
		{Path: "updatedAt", Value: time.Now()},
	})
	return translateFirestore(err)
}

func (r *userFirestoreImpl) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	_, err := r.fs.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "isAdmin", Value: isAdmin},
		{Path: "updatedAt", Value: time.Now()},
	})
	return translateFirestore(err)
}
