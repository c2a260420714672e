package memory

import (
	"context"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo directorio de usuarios en memoria.
type UserRepo struct {
	store *Store
}

// NewUserRepository construye el repo.
func NewUserRepository(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

// Exists indica si el usuario existe y está activo.
func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	return ok && u.Active, nil
}
