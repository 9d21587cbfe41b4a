package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/storage"
)

// Profiles reads and edits the caller's own profile.
type Profiles struct {
	users storage.UserStore
	log   *zap.SugaredLogger
}

func NewProfiles(users storage.UserStore, log *zap.SugaredLogger) *Profiles {
	return &Profiles{users: users, log: log.Named("profiles")}
}

// Get returns the user's profile. The password hash never leaves the store
// layer in serialized form.
func (p *Profiles) Get(ctx context.Context, userID uuid.UUID) (models.User, error) {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, p.mapErr("get profile", userID, err)
	}
	return user, nil
}

// Update applies the set fields of patch. A set but empty value overwrites.
func (p *Profiles) Update(ctx context.Context, userID uuid.UUID, patch models.ProfilePatch) (models.User, error) {
	if patch.Empty() {
		return p.Get(ctx, userID)
	}
	if name, ok := patch.Name.Get(); ok {
		patch.Name = models.Some(strings.TrimSpace(name))
	}
	if skills, ok := patch.Skills.Get(); ok {
		patch.Skills = models.Some(models.NormalizeSkills(skills))
	}

	user, err := p.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return models.User{}, p.mapErr("update profile", userID, err)
	}
	return user, nil
}

func (p *Profiles) mapErr(op string, userID uuid.UUID, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	p.log.Errorw(op, "user_id", userID, "error", err)
	return storageErr(op, err)
}
