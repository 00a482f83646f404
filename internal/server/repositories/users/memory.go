package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It is used by the
// memory:// backend and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User), now: time.Now}
}

// FindByUsernameOrEmail returns the account matching username, or failing
// that the one matching email. Empty identifiers are ignored.
func (r *MemoryRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.findBy(func(u models.User) bool { return username != "" && u.Username == username }); ok {
		return u, nil
	}
	if u, ok := r.findBy(func(u models.User) bool { return email != "" && u.Email == email }); ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) findBy(match func(models.User) bool) (*models.User, bool) {
	for _, u := range r.users {
		if match(u) {
			c := u
			return &c, true
		}
	}
	return nil, false
}

// Create stores a copy of user under a new UUID.
func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, common.ErrorConflict
		}
	}

	c := *user
	c.ID = uuid.NewString()
	c.CreatedAt = r.now().UTC()
	c.UpdatedAt = c.CreatedAt
	r.users[c.ID] = c

	return &c, nil
}

// FindByID returns a copy of the stored account.
func (r *MemoryRepository) FindByID(ctx context.Context, id string, excludeSecrets bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if excludeSecrets {
		return u.Public(), nil
	}
	return &u, nil
}

// UpdateRefreshToken sets the token; an empty token clears it.
func (r *MemoryRepository) UpdateRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = r.now().UTC()
	r.users[id] = u

	return u.Public(), nil
}

func (r *MemoryRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = r.now().UTC()
	r.users[id] = u

	return nil
}
