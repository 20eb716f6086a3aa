package sqlite

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

const taskColumns = `id, title, client_id`

// TaskStore implements store.TaskStore on SQLite.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a task store on db, which may be a *sql.DB or a *sql.Tx.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

// FindAll implements store.Repository.
func (s *TaskStore) FindAll(ctx context.Context) ([]domain.Task, error) {
	return s.query(ctx, "find_all", `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

// FindByClientID implements store.TaskStore.
func (s *TaskStore) FindByClientID(ctx context.Context, clientID int64) ([]domain.Task, error) {
	return s.query(ctx, "find_by_client_id",
		`SELECT `+taskColumns+` FROM tasks WHERE client_id = ? ORDER BY id`, clientID)
}

func (s *TaskStore) query(ctx context.Context, operation, query string, args ...any) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tasks",
			slog.String("operation", operation), slog.String("error", err.Error()))
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
	return tasks, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
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
func (s *TaskStore) FindByID(ctx context.Context, id int64) (domain.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, fmt.Errorf("%w: id %d", store.ErrTaskNotFound, id)
	}
	if err != nil {
		return domain.Task{}, MapError(err, "task", "find_by_id")
	}
	return task, nil
}

// Save implements store.Repository.
func (s *TaskStore) Save(ctx context.Context, task domain.Task) (domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	task.Normalize()

	if task.IsNew() {
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO tasks (title, client_id) VALUES (?, ?)`, task.Title, nullableID(task.ClientID))
		if err != nil {
			return domain.Task{}, s.saveError(log, err, task)
		}
		if task.ID, err = result.LastInsertId(); err != nil {
			return domain.Task{}, MapError(err, "task", "save")
		}
		log.Debug("task created", slog.Int64("task_id", task.ID))
		return task, nil
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, client_id = ? WHERE id = ?`, task.Title, nullableID(task.ClientID), task.ID)
	if err != nil {
		return domain.Task{}, s.saveError(log, err, task)
	}
	if err := checkRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrTaskNotFound, task.ID)); err != nil {
		return domain.Task{}, err
	}

	log.Debug("task updated", slog.Int64("task_id", task.ID))
	return task, nil
}

func (s *TaskStore) saveError(log *slog.Logger, err error, task domain.Task) error {
	if IsForeignKeyViolation(err) && task.ClientID != nil {
		return fmt.Errorf("%w: id %d", store.ErrUnknownClient, *task.ClientID)
	}
	log.Error("failed to save task", slog.String("error", err.Error()), slog.Int64("task_id", task.ID))
	return MapError(err, "task", "save")
}

// DeleteByID implements store.Repository.
func (s *TaskStore) DeleteByID(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return MapError(err, "task", "delete")
	}
	if err := checkRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrTaskNotFound, id)); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted", slog.Int64("task_id", id))
	return nil
}
