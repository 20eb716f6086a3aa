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

// PostgresClientStore implements store.ClientStore on PostgreSQL.
type PostgresClientStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresClientStore creates a client store on db, which may be a
// *sql.DB or a *sql.Tx. A bcryptCost of zero selects bcrypt.DefaultCost.
// If logger is nil, the default logger is used.
func NewPostgresClientStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresClientStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresClientStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "client_store")),
	}
}

var _ store.ClientStore = (*PostgresClientStore)(nil)

// WithTx implements store.ClientStore.
func (s *PostgresClientStore) WithTx(tx *sql.Tx) store.ClientStore {
	return &PostgresClientStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
		logger:     s.logger,
	}
}

// FindAll implements store.Repository.
func (s *PostgresClientStore) FindAll(ctx context.Context) ([]domain.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, login, password_hash
		FROM clients
		ORDER BY id
	`)
	if err != nil {
		log.Error("failed to list clients", slog.String("error", err.Error()))
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

	log.Debug("listed clients", slog.Int("count", len(clients)))
	return clients, nil
}

// FindByID implements store.Repository.
// Returns store.ErrClientNotFound if the client does not exist.
func (s *PostgresClientStore) FindByID(ctx context.Context, id int64) (domain.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var c domain.Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, login, password_hash
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Login, &c.HashedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("client not found", slog.Int64("client_id", id))
			return domain.Client{}, fmt.Errorf("%w: id %d", store.ErrClientNotFound, id)
		}
		log.Error("failed to get client", slog.String("error", err.Error()), slog.Int64("client_id", id))
		return domain.Client{}, MapError(err, "client", "find_by_id")
	}

	return c, nil
}

// Save implements store.Repository. The plaintext password is hashed before
// it is written and is never returned. Updating without a password keeps the
// stored hash.
func (s *PostgresClientStore) Save(ctx context.Context, client domain.Client) (domain.Client, error) {
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
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO clients (login, password_hash)
			VALUES ($1, $2)
			RETURNING id
		`, client.Login, hash).Scan(&client.ID)
		if err != nil {
			return domain.Client{}, s.saveError(log, err, client)
		}
		client.HashedPassword = hash
		log.Info("client created", slog.Int64("client_id", client.ID))
		return client, nil
	}

	err := s.db.QueryRowContext(ctx, `
		UPDATE clients
		SET login = $1, password_hash = COALESCE(NULLIF($2, ''), password_hash)
		WHERE id = $3
		RETURNING password_hash
	`, client.Login, hash, client.ID).Scan(&client.HashedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("client not found for update", slog.Int64("client_id", client.ID))
			return domain.Client{}, fmt.Errorf("%w: id %d", store.ErrClientNotFound, client.ID)
		}
		return domain.Client{}, s.saveError(log, err, client)
	}

	log.Info("client updated", slog.Int64("client_id", client.ID))
	return client, nil
}

func (s *PostgresClientStore) saveError(log *slog.Logger, err error, client domain.Client) error {
	if IsUniqueViolation(err) {
		log.Debug("login already exists", slog.Int64("client_id", client.ID))
		return fmt.Errorf("%w: %q", store.ErrLoginExists, client.Login)
	}
	log.Error("failed to save client", slog.String("error", err.Error()), slog.Int64("client_id", client.ID))
	return MapError(err, "client", "save")
}

// DeleteByID implements store.Repository. Tasks owned by the client are
// detached in the same transaction.
// Returns store.ErrClientNotFound if the client does not exist.
func (s *PostgresClientStore) DeleteByID(ctx context.Context, id int64) error {
	if db, ok := s.db.(store.TxBeginner); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.deleteDetached(ctx, tx, id)
		})
	}
	return s.deleteDetached(ctx, s.db, id)
}

func (s *PostgresClientStore) deleteDetached(ctx context.Context, db store.DBTX, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := db.ExecContext(ctx, `UPDATE tasks SET client_id = NULL WHERE client_id = $1`, id); err != nil {
		log.Error("failed to detach client tasks", slog.String("error", err.Error()), slog.Int64("client_id", id))
		return MapError(err, "client", "delete")
	}

	result, err := db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete client", slog.String("error", err.Error()), slog.Int64("client_id", id))
		return MapError(err, "client", "delete")
	}
	if err := CheckRowsAffected(result, fmt.Errorf("%w: id %d", store.ErrClientNotFound, id)); err != nil {
		log.Debug("client not found for delete", slog.Int64("client_id", id))
		return err
	}

	log.Info("client deleted", slog.Int64("client_id", id))
	return nil
}
