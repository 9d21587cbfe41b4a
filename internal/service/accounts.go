package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/taskboard-be/internal/auth"
	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/models/dto"
	"github.com/hongminglow/taskboard-be/internal/storage"
)

// PasswordHasher hashes and checks user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

// Accounts registers users and exchanges credentials for tokens.
type Accounts struct {
	users  storage.UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.SugaredLogger
}

func NewAccounts(users storage.UserStore, hasher PasswordHasher, tokens TokenIssuer, log *zap.SugaredLogger) *Accounts {
	return &Accounts{users: users, hasher: hasher, tokens: tokens, log: log.Named("accounts")}
}

// Register creates a new user. The email is stored lower-cased.
func (a *Accounts) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkStruct(req); err != nil {
		return models.User{}, err
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		a.log.Errorw("hash password", "error", err)
		return models.User{}, storageErr("hash password", err)
	}

	created, err := a.users.CreateUser(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Skills:       []string{},
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		a.log.Errorw("create user", "error", err)
		return models.User{}, storageErr("create user", err)
	}

	a.log.Infow("user registered", "user_id", created.ID)
	return created, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords fail identically.
func (a *Accounts) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkStruct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := a.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.LoginResponse{}, errInvalidCredentials
		}
		a.log.Errorw("find user", "error", err)
		return dto.LoginResponse{}, storageErr("find user", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			a.log.Warnw("compare password", "user_id", user.ID, "error", err)
		}
		return dto.LoginResponse{}, errInvalidCredentials
	}

	token, err := a.tokens.Generate(user)
	if err != nil {
		a.log.Errorw("generate token", "user_id", user.ID, "error", err)
		return dto.LoginResponse{}, storageErr("generate token", err)
	}
	return dto.LoginResponse{Token: token, User: user}, nil
}

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
