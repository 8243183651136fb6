package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"streamaccts/internal/client"
	"streamaccts/internal/dto"
	"streamaccts/internal/model"
	"streamaccts/internal/repository"
)

type UserService interface {
	Verify(ctx context.Context, token string) (*dto.VerifiedUser, error)
	SetClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	Profile(ctx context.Context, caller *model.Identity) (*model.User, error)
	UpdateProfile(ctx context.Context, caller *model.Identity, displayName string) (*model.User, error)
	SetAdmin(ctx context.Context, uid string, isAdmin bool) error
	PromoteByEmail(ctx context.Context, email string) (*model.Identity, error)
}

type userServiceImpl struct {
	auth     client.Authenticator
	userRepo repository.UserRepository
	log      logrus.FieldLogger
}

func NewUserService(auth client.Authenticator, userRepo repository.UserRepository, log logrus.FieldLogger) UserService {
	return &userServiceImpl{
		auth:     auth,
		userRepo: userRepo,
		log:      log,
	}
}

// Verify checks the token and makes sure a user document exists for it.
func (s *userServiceImpl) Verify(ctx context.Context, token string) (*dto.VerifiedUser, error) {
	if strings.TrimSpace(token) == "" {
		return nil, Invalid("Token is required")
	}

	identity, err := s.auth.Verify(ctx, token)
	if err != nil {
		return nil, Unauthorized("Invalid token", err)
	}

	user, err := s.getOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}

	displayName := user.DisplayName
	if displayName == "" {
		displayName = identity.Name
	}

	return &dto.VerifiedUser{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: displayName,
		IsAdmin:     user.IsAdmin,
	}, nil
}

func (s *userServiceImpl) getOrCreate(ctx context.Context, identity *model.Identity) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, identity.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	now := time.Now()
	user = &model.User{
		ID:          identity.UID,
		Email:       identity.Email,
		DisplayName: identity.Name,
		IsAdmin:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("uid", identity.UID).Info("user document created")
	return user, nil
}

func (s *userServiceImpl) SetClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if strings.TrimSpace(uid) == "" {
		return Invalid("uid is required")
	}
	if claims == nil {
		claims = map[string]interface{}{}
	}

	if err := s.auth.SetCustomClaims(ctx, uid, claims); err != nil {
		return fmt.Errorf("set custom claims: %w", err)
	}
	return nil
}

func (s *userServiceImpl) Profile(ctx context.Context, caller *model.Identity) (*model.User, error) {
	return s.getOrCreate(ctx, caller)
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, caller *model.Identity, displayName string) (*model.User, error) {
	user, err := s.getOrCreate(ctx, caller)
	if err != nil {
		return nil, err
	}

	displayName = strings.TrimSpace(displayName)
	if err := s.userRepo.UpdateDisplayName(ctx, caller.UID, displayName); err != nil {
		return nil, notFoundAs(err, "User", "update display name")
	}

	user.DisplayName = displayName
	user.UpdatedAt = time.Now()
	return user, nil
}

// SetAdmin writes the custom claim first; the user document only mirrors it.
// SetAdmin requires the user document to exist before the claim is touched.
func (s *userServiceImpl) SetAdmin(ctx context.Context, uid string, isAdmin bool) error {
	if _, err := s.userRepo.FindByID(ctx, uid); err != nil {
		return notFoundAs(err, "User", "find user")
	}

	if err := s.auth.SetCustomClaims(ctx, uid, map[string]interface{}{"isAdmin": isAdmin}); err != nil {
		return fmt.Errorf("set admin claim: %w", err)
	}

	if err := s.userRepo.SetAdmin(ctx, uid, isAdmin); err != nil {
		return notFoundAs(err, "User", "update user document")
	}

	s.log.WithFields(logrus.Fields{"uid": uid, "is_admin": isAdmin}).Info("admin flag updated")
	return nil
}

func (s *userServiceImpl) PromoteByEmail(ctx context.Context, email string) (*model.Identity, error) {
	identity, err := s.auth.UserByEmail(ctx, email)
	if errors.Is(err, client.ErrUserNotFound) {
		return nil, NotFound("User")
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.getOrCreate(ctx, identity); err != nil {
		return nil, err
	}
	if err := s.SetAdmin(ctx, identity.UID, true); err != nil {
		return nil, err
	}

	identity.IsAdmin = true
	return identity, nil
}
