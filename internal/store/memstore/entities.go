package memstore

import (
	"context"
	"fmt"

	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ClientRepository stores clients in memory, hashing passwords on save.
type ClientRepository struct {
	*Repository[domain.Client]
}

// NewClientRepository creates an empty ClientRepository with unique logins.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		Repository: New(Accessors[domain.Client]{
			GetID:     func(c domain.Client) int64 { return c.ID },
			SetID:     func(c *domain.Client, id int64) { c.ID = id },
			UniqueKey: func(c domain.Client) string { return c.Login },
		}, store.ErrClientNotFound, store.ErrLoginExists),
	}
}

// Save hashes a supplied password, keeps the stored hash when the password
// is empty, and never returns the plaintext.
func (r *ClientRepository) Save(ctx context.Context, client domain.Client) (domain.Client, error) {
	client.Normalize()
	if client.Password != "" {
		hash, err := store.HashPassword(client.Password, bcrypt.MinCost)
		if err != nil {
			return domain.Client{}, err
		}
		client.HashedPassword = hash
	} else if client.IsNew() {
		return domain.Client{}, fmt.Errorf("%w: password is required", store.ErrInvalidEntity)
	} else {
		existing, err := r.Repository.FindByID(ctx, client.ID)
		if err != nil {
			return domain.Client{}, err
		}
		client.HashedPassword = existing.HashedPassword
	}
	client.Password = ""

	return r.Repository.Save(ctx, client)
}

// TaskRepository stores tasks in memory.
type TaskRepository struct {
	*Repository[domain.Task]
}

// NewTaskRepository creates an empty TaskRepository.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		Repository: New(Accessors[domain.Task]{
			GetID: func(t domain.Task) int64 { return t.ID },
			SetID: func(t *domain.Task, id int64) { t.ID = id },
		}, store.ErrTaskNotFound, nil),
	}
}

// Save stores task with its title trimmed.
func (r *TaskRepository) Save(ctx context.Context, task domain.Task) (domain.Task, error) {
	task.Normalize()
	return r.Repository.Save(ctx, task)
}

// FindByClientID returns the tasks owned by clientID, ordered by ID.
func (r *TaskRepository) FindByClientID(ctx context.Context, clientID int64) ([]domain.Task, error) {
	return r.FindWhere(ctx, func(t domain.Task) bool {
		return t.ClientID != nil && *t.ClientID == clientID
	})
}
