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

// ClientStore implements store.ClientStore on SQLite.
type ClientStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewClientStore creates a client store on db, which may be a *sql.DB or a
// *sql.Tx. A bcryptCost of zero selects bcrypt.DefaultCost.
func NewClientStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *ClientStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ClientStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "client_store")),
	}
}

var _ store.ClientStore = (*ClientStore)(nil)

// WithTx implements store.ClientStore.
func (s *ClientStore) WithTx(tx *sql.Tx) store.ClientStore {
	return &ClientStore{db: tx, bcryptCost: s.bcryptCost, logger: s.logger}
}

// FindAll implements store.Repository.
func (s *ClientStore) FindAll(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, login, password_hash FROM clients ORDER BY id`)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list clients", slog.String("error", err.Error()))
		return nil, MapError(err, "client", "find_all")
	}
	defer func() { _ = rows.Close() }()

	clients := []domain.Client{}
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Login, &c.HashedPassword); err != nil {
			return nil, MapError(err, "client", "find_all")
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err, "client", "find_all")
	}
	return clients, nil
}

// FindByID implements store.Repository.
func (s *ClientStore) FindByID(ctx context.Context, id int64) (domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx,
		`SELECT id, login, password_hash FROM clients WHERE id = ?`, id,
	).Scan(&c.ID, &c.Login, &c.HashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, fmt.Errorf("%w: id %d", store.ErrClientNotFound, id)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get client",
			slog.String("error", err.Error()), slog.Int64("client_id", id))
		return domain.Client{}, MapError(err, "client", "find_by_id")
	}
	return c, nil
}

// Save implements store.Repository. An empty password on update keeps the
// stored hash.
func (s *ClientStore) Save(ctx context.Context, client domain.Client) (domain.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	client.Normalize()

	hash := ""
	if client.Password != "" {
		var err error
		if hash, err = store.HashPassword(client.Password, s.bcryptCost); err != nil {
			return domain.Client{}, err
		}
	}
	client.Password = ""

	if client.IsNew() {
		if hash == "" {
			return domain.Client{}, fmt.Errorf("%w: password is required", store.ErrInvalidEntity)
		}
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO clients (login, password_hash) VALUES (?, ?)`, client.Login, hash)
		if err != nil {
			return domain.Client{}, s.saveError(log, err, client)
		}
		if client.ID, err = result.LastInsertId(); err != nil {
			return domain.Client{}, MapError(err, "client", "save")
		}
		client.HashedPassword = hash
		log.Debug("client created", slog.Int64("client_id", client.ID))
		return client, nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET login = ?, password_hash = COALESCE(NULLIF(?, ''), password_hash)
		WHERE id = ?
	`, client.Login, hash, client.ID)
	if err != nil {
		return domain.Client{}, s.saveError(log, err, client)
	}
	if err := checkRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrClientNotFound, client.ID)); err != nil {
		return domain.Client{}, err
	}

	client.HashedPassword = hash
	log.Debug("client updated", slog.Int64("client_id", client.ID))
	return client, nil
}

func (s *ClientStore) saveError(log *slog.Logger, err error, client domain.Client) error {
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %q", store.ErrLoginExists, client.Login)
	}
	log.Error("failed to save client", slog.String("error", err.Error()), slog.Int64("client_id", client.ID))
	return MapError(err, "client", "save")
}

// DeleteByID implements store.Repository. Tasks owned by the client are
// detached in the same transaction.
func (s *ClientStore) DeleteByID(ctx context.Context, id int64) error {
	if db, ok := s.db.(store.TxBeginner); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.deleteDetached(ctx, tx, id)
		})
	}
	return s.deleteDetached(ctx, s.db, id)
}

func (s *ClientStore) deleteDetached(ctx context.Context, db store.DBTX, id int64) error {
	if _, err := db.ExecContext(ctx, `UPDATE tasks SET client_id = NULL WHERE client_id = ?`, id); err != nil {
		return MapError(err, "client", "delete")
	}

	result, err := db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return MapError(err, "client", "delete")
	}
	if err := checkRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrClientNotFound, id)); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("client deleted", slog.Int64("client_id", id))
	return nil
}
