package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store on db, which may be a *sql.DB or
// a *sql.Tx. If logger is nil, the default logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// FindAll implements store.Repository.
func (s *PostgresTaskStore) FindAll(ctx context.Context) ([]domain.Task, error) {
	return s.query(ctx, "find_all", `
		SELECT id, title, client_id
		FROM tasks
		ORDER BY id
	`)
}

// FindByClientID implements store.TaskStore.
func (s *PostgresTaskStore) FindByClientID(ctx context.Context, clientID int64) ([]domain.Task, error) {
	return s.query(ctx, "find_by_client_id", `
		SELECT id, title, client_id
		FROM tasks
		WHERE client_id = $1
		ORDER BY id
	`, clientID)
}

func (s *PostgresTaskStore) query(ctx context.Context, operation, query string, args ...any) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("operation", operation), slog.String("error", err.Error()))
		return nil, MapError(err, "task", operation)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err, "task", operation)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err, "task", operation)
	}

	log.Debug("queried tasks", slog.String("operation", operation), slog.Int("count", len(tasks)))
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func scanTask(row scanner) (domain.Task, error) {
	var (
		task     domain.Task
		clientID sql.NullInt64
	)
	if err := row.Scan(&task.ID, &task.Title, &clientID); err != nil {
		return domain.Task{}, err
	}
	if clientID.Valid {
		task.ClientID = &clientID.Int64
	}
	return task, nil
}

// FindByID implements store.Repository.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) FindByID(ctx context.Context, id int64) (domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, `
		SELECT id, title, client_id
		FROM tasks
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return domain.Task{}, fmt.Errorf("%w: id %d", store.ErrTaskNotFound, id)
		}
		log.Error("failed to get task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return domain.Task{}, MapError(err, "task", "find_by_id")
	}

	return task, nil
}

// Save implements store.Repository.
// Returns store.ErrUnknownClient if the task references a missing client.
func (s *PostgresTaskStore) Save(ctx context.Context, task domain.Task) (domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	task.Normalize()

	if task.IsNew() {
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO tasks (title, client_id)
			VALUES ($1, $2)
			RETURNING id
		`, task.Title, nullableID(task.ClientID)).Scan(&task.ID)
		if err != nil {
			return domain.Task{}, s.saveError(log, err, task)
		}
		log.Info("task created", slog.Int64("task_id", task.ID))
		return task, nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $1, client_id = $2
		WHERE id = $3
	`, task.Title, nullableID(task.ClientID), task.ID)
	if err != nil {
		return domain.Task{}, s.saveError(log, err, task)
	}
	if err := CheckRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrTaskNotFound, task.ID)); err != nil {
		log.Debug("task not found for update", slog.Int64("task_id", task.ID))
		return domain.Task{}, err
	}

	log.Info("task updated", slog.Int64("task_id", task.ID))
	return task, nil
}

func (s *PostgresTaskStore) saveError(log *slog.Logger, err error, task domain.Task) error {
	if IsForeignKeyViolation(err) && task.ClientID != nil {
		log.Debug("task references missing client", slog.Int64("task_id", task.ID))
		return fmt.Errorf("%w: id %d", store.ErrUnknownClient, *task.ClientID)
	}
	log.Error("failed to save task", slog.String("error", err.Error()), slog.Int64("task_id", task.ID))
	return MapError(err, "task", "save")
}

// DeleteByID implements store.Repository.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) DeleteByID(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return MapError(err, "task", "delete")
	}
	if err := CheckRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrTaskNotFound, id)); err != nil {
		log.Debug("task not found for delete", slog.Int64("task_id", id))
		return err
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}
