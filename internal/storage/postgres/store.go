package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.TaskStore = (*Store)(nil)
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Store provides Postgres-backed persistence for users and tasks.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

// NewStore connects to databaseURL and applies pending migrations.
func NewStore(ctx context.Context, log *zap.SugaredLogger, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool, log: log.Named("storage.postgres")}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s.log.Infow("postgres ready", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)
	return s, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: s.log.Named("migrate")})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// gooseLogger sends migration output to zap. Fatalf logs at error level
// and does not exit; UpContext still returns the error.
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

const userColumns = `id, name, email, password_hash, bio, skills, created_at, updated_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Skills == nil {
		user.Skills = []string{}
	}
	const query = `
		INSERT INTO users (id, name, email, password_hash, bio, skills)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Bio, user.Skills)
	created, err := scanUser(row)
	if err != nil {
		if isCode(err, codeUniqueViolation) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// FindByEmail fetches a user by email address, ignoring case.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// UpdateProfile overwrites the set fields of patch in one statement.
func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (models.User, error) {
	skills, setSkills := patch.Skills.Get()
	if skills == nil {
		skills = []string{}
	}
	const query = `
		UPDATE users SET
			name = COALESCE($2::text, name),
			bio = COALESCE($3::text, bio),
			skills = CASE WHEN $4::boolean THEN $5::text[] ELSE skills END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, id, patch.Name.Ptr(), patch.Bio.Ptr(), setSkills, skills)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Bio, &user.Skills, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	if user.Skills == nil {
		user.Skills = []string{}
	}
	return user, nil
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
