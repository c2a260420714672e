package repository

import "context"

// UserRepository directorio de actores para atribuir movimientos.
type UserRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}
