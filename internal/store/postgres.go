package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/query"
)

const (
	profileColumns = `id, email, password, full_name, avatar_url, avatar_key, created_at, updated_at`
	taskColumns    = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`
)

// PostgresStore handles profile and task CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the profiles and tasks tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			full_name  TEXT,
			avatar_url TEXT,
			avatar_key TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id     UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			description TEXT,
			status      TEXT NOT NULL DEFAULT 'pending'
			            CHECK (status IN ('pending', 'in_progress', 'completed')),
			priority    TEXT NOT NULL DEFAULT 'medium'
			            CHECK (priority IN ('low', 'medium', 'high')),
			due_date    TIMESTAMPTZ,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id);
	`)
	return err
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Password, &p.FullName, &p.AvatarURL, &p.AvatarKey, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, email, hashedPassword string, fullName *string) (*models.Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx,
		`INSERT INTO profiles (email, password, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING `+profileColumns,
		email, hashedPassword, fullName,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("create profile: %w", models.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email,
	))
}

func (s *PostgresStore) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	if uuid.Validate(id) != nil {
		return nil, models.ErrNotFound
	}
	return scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id,
	))
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, fullName, avatarURL *string, now time.Time) (*models.Profile, error) {
	if uuid.Validate(id) != nil {
		return nil, models.ErrNotFound
	}
	return scanProfile(s.pool.QueryRow(ctx,
		`UPDATE profiles SET full_name = $2, avatar_url = $3, updated_at = $4
		 WHERE id = $1
		 RETURNING `+profileColumns,
		id, fullName, avatarURL, now,
	))
}

func (s *PostgresStore) SetAvatar(ctx context.Context, id, key, url string, now time.Time) (*models.Profile, error) {
	if uuid.Validate(id) != nil {
		return nil, models.ErrNotFound
	}
	return scanProfile(s.pool.QueryRow(ctx,
		`UPDATE profiles SET avatar_key = $2, avatar_url = $3, updated_at = $4
		 WHERE id = $1
		 RETURNING `+profileColumns,
		id, key, url, now,
	))
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, t *models.Task) error {
	created, err := scanTask(s.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, status, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+taskColumns,
		t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
	))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	*t = *created
	return nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, ownerID string, f query.Filter, srt query.Sort) ([]models.Task, error) {
	if uuid.Validate(ownerID) != nil {
		return nil, nil
	}
	where, args := f.SQL(ownerID)
	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks `+where+` `+srt.SQL(), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) GetTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	if uuid.Validate(id) != nil || uuid.Validate(ownerID) != nil {
		return nil, models.ErrNotFound
	}
	return scanTask(s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID,
	))
}

// UpdateTask applies patch to a task owned by ownerID in a single statement.
func (s *PostgresStore) UpdateTask(ctx context.Context, ownerID, id string, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	if uuid.Validate(id) != nil || uuid.Validate(ownerID) != nil {
		return nil, models.ErrNotFound
	}

	sets, args := taskPatchSQL(patch, now, []any{id, ownerID})
	return scanTask(s.pool.QueryRow(ctx,
		`UPDATE tasks SET `+sets+` WHERE id = $1 AND user_id = $2 RETURNING `+taskColumns,
		args...,
	))
}

func taskPatchSQL(patch models.TaskPatch, now time.Time, args []any) (string, []any) {
	var sets []string
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	switch {
	case patch.ClearDescription:
		set("description", nil)
	case patch.Description != nil:
		set("description", *patch.Description)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	switch {
	case patch.ClearDueDate:
		set("due_date", nil)
	case patch.DueDate != nil:
		set("due_date", *patch.DueDate)
	}
	set("updated_at", now)

	return strings.Join(sets, ", "), args
}

func (s *PostgresStore) DeleteTask(ctx context.Context, ownerID, id string) error {
	if uuid.Validate(id) != nil || uuid.Validate(ownerID) != nil {
		return models.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
