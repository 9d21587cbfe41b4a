package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/taskboard-be/internal/auth"
	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/models/dto"
	"github.com/hongminglow/taskboard-be/internal/storage"
	"github.com/hongminglow/taskboard-be/internal/storage/memory"
)

type fixture struct {
	accounts *Accounts
	profiles *Profiles
	tasks    *Tasks
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := memory.NewStore()
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", "taskboard-test", time.Hour)
	return fixture{
		accounts: NewAccounts(store, auth.NewBcryptHasher(bcrypt.MinCost), tokens, log),
		profiles: NewProfiles(store, log),
		tasks:    NewTasks(store, log),
	}
}

func (f fixture) register(t *testing.T, email string) models.User {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), dto.RegisterRequest{Name: "User", Email: email, Password: "password123"})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.accounts.Register(ctx, dto.RegisterRequest{Name: " Alice ", Email: " Alice@Example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.Equal(t, []string{}, u.Skills)

	_, err = f.accounts.Register(ctx, dto.RegisterRequest{Name: "Alice2", Email: "ALICE@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	for name, req := range map[string]dto.RegisterRequest{
		"missing name":   {Email: "a@example.com", Password: "password123"},
		"blank name":     {Name: "   ", Email: "a@example.com", Password: "password123"},
		"bad email":      {Name: "A", Email: "not-an-email", Password: "password123"},
		"short password": {Name: "A", Email: "a@example.com", Password: "short"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.accounts.Register(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	resp, err := f.accounts.Login(ctx, dto.LoginRequest{Email: "ALICE@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	_, err = f.accounts.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.accounts.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	got, err := f.profiles.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = f.profiles.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.profiles.Update(ctx, u.ID, models.ProfilePatch{
		Bio:    models.Some("Gopher"),
		Skills: models.Some([]string{" go ", "", "sql", "  "}),
	})
	require.NoError(t, err)
	assert.Equal(t, "User", updated.Name)
	assert.Equal(t, "Gopher", updated.Bio)
	assert.Equal(t, []string{"go", "sql"}, updated.Skills)

	nameOnly, err := f.profiles.Update(ctx, u.ID, models.ProfilePatch{Name: models.Some("Alicia")})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", nameOnly.Name)
	assert.Equal(t, "Gopher", nameOnly.Bio)
	assert.Equal(t, []string{"go", "sql"}, nameOnly.Skills)

	cleared, err := f.profiles.Update(ctx, u.ID, models.ProfilePatch{Bio: models.Some(""), Skills: models.Some[[]string](nil)})
	require.NoError(t, err)
	assert.Equal(t, "", cleared.Bio)
	assert.Equal(t, []string{}, cleared.Skills)
	assert.Equal(t, "Alicia", cleared.Name)

	_, err = f.profiles.Update(ctx, uuid.New(), models.ProfilePatch{Bio: models.Some("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	task, err := f.tasks.Create(ctx, u.ID, models.TaskDraft{Title: "Write report"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, u.ID, task.UserID)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.False(t, task.CreatedAt.IsZero())

	done, err := f.tasks.Create(ctx, u.ID, models.TaskDraft{Title: "Done", Status: models.Some(models.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	for name, draft := range map[string]models.TaskDraft{
		"empty title":      {Title: ""},
		"whitespace title": {Title: "   "},
		"bad status":       {Title: "x", Status: models.Some(models.TaskStatus("archived"))},
		"null status":      {Title: "x", Status: models.Some(models.TaskStatus(""))},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.tasks.Create(ctx, u.ID, draft)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestListTasksFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	report, err := f.tasks.Create(ctx, alice.ID, models.TaskDraft{Title: "Write report"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, alice.ID, models.TaskDraft{Title: "Buy milk", Status: models.Some(models.StatusCompleted)})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, bob.ID, models.TaskDraft{Title: "Bob report"})
	require.NoError(t, err)

	all, err := f.tasks.List(ctx, alice.ID, models.TaskFilter{Search: "   "})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := f.tasks.List(ctx, alice.ID, models.TaskFilter{Search: "REPORT", Status: models.Some(models.StatusPending)})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, report.ID, found[0].ID)

	none, err := f.tasks.List(ctx, alice.ID, models.TaskFilter{Search: "report", Status: models.Some(models.StatusCompleted)})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = f.tasks.List(ctx, alice.ID, models.TaskFilter{Status: models.Some(models.TaskStatus("archived"))})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	task, err := f.tasks.Create(ctx, alice.ID, models.TaskDraft{Title: "Write report", Description: "q3"})
	require.NoError(t, err)

	updated, err := f.tasks.Update(ctx, alice.ID, task.ID, models.TaskPatch{Status: models.Some(models.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, "q3", updated.Description)

	cleared, err := f.tasks.Update(ctx, alice.ID, task.ID, models.TaskPatch{Description: models.Some("")})
	require.NoError(t, err)
	assert.Equal(t, "", cleared.Description)

	_, err = f.tasks.Update(ctx, alice.ID, task.ID, models.TaskPatch{Title: models.Some("  ")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.tasks.Update(ctx, alice.ID, task.ID, models.TaskPatch{Status: models.Some(models.TaskStatus("done"))})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.tasks.Update(ctx, bob.ID, task.ID, models.TaskPatch{Title: models.Some("mine now")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.tasks.Update(ctx, alice.ID, uuid.New(), models.TaskPatch{Title: models.Some("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	unchanged, err := f.tasks.List(ctx, alice.ID, models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, unchanged, 1)
	assert.Equal(t, "Write report", unchanged[0].Title)
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	task, err := f.tasks.Create(ctx, alice.ID, models.TaskDraft{Title: "Write report"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.tasks.Delete(ctx, bob.ID, task.ID), ErrNotFound)
	require.NoError(t, f.tasks.Delete(ctx, alice.ID, task.ID))
	assert.ErrorIs(t, f.tasks.Delete(ctx, alice.ID, task.ID), ErrNotFound)

	_, err = f.tasks.Update(ctx, alice.ID, task.ID, models.TaskPatch{Title: models.Some("Revived")})
	assert.ErrorIs(t, err, ErrNotFound)
	remaining, err := f.tasks.List(ctx, alice.ID, models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice@example.com")

	for _, title := range []string{"a", "b", "c"} {
		_, err := f.tasks.Create(ctx, alice.ID, models.TaskDraft{Title: title})
		require.NoError(t, err)
	}
	list, err := f.tasks.List(ctx, alice.ID, models.TaskFilter{})
	require.NoError(t, err)
	_, err = f.tasks.Update(ctx, alice.ID, list[0].ID, models.TaskPatch{Status: models.Some(list[0].Status.Toggle())})
	require.NoError(t, err)

	stats, err := f.tasks.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStats{Total: 3, Pending: 2, Completed: 1}, stats)
}

type failingStore struct{ storage.TaskStore }

var errDiskOnFire = errors.New("disk on fire")

func (failingStore) ListTasks(context.Context, uuid.UUID, models.TaskFilter) ([]models.Task, error) {
	return nil, errDiskOnFire
}

func (failingStore) DeleteTask(context.Context, uuid.UUID, uuid.UUID) error {
	return errDiskOnFire
}

func TestStorageFailuresAreWrapped(t *testing.T) {
	svc := NewTasks(failingStore{}, zap.NewNop().Sugar())

	_, err := svc.List(context.Background(), uuid.New(), models.TaskFilter{})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, errDiskOnFire)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrStorage)
}
