package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/store"
)

// Repository provides access to shopper accounts and the stored session pointer.
type Repository interface {
	List(ctx context.Context) []User
	SaveAll(ctx context.Context, users []User) error
	Session(ctx context.Context) (SessionUser, bool)
	SetSession(ctx context.Context, u SessionUser) error
	ClearSession(ctx context.Context) error
}

// StoreRepository keeps accounts under the users key and the signed-in
// shopper under currentUser.
type StoreRepository struct {
	store store.Store
	log   *zap.Logger
}

func NewStoreRepository(s store.Store, log *zap.Logger) *StoreRepository {
	return &StoreRepository{store: s, log: log}
}

func (r *StoreRepository) List(ctx context.Context) []User {
	return store.ReadList[User](ctx, r.store, store.KeyUsers, r.log)
}

func (r *StoreRepository) SaveAll(ctx context.Context, users []User) error {
	return store.Write(ctx, r.store, store.KeyUsers, users)
}

func (r *StoreRepository) Session(ctx context.Context) (SessionUser, bool) {
	return store.Lookup[SessionUser](ctx, r.store, store.KeyCurrentUser, r.log)
}

func (r *StoreRepository) SetSession(ctx context.Context, u SessionUser) error {
	return store.Write(ctx, r.store, store.KeyCurrentUser, u)
}

func (r *StoreRepository) ClearSession(ctx context.Context) error {
	return store.Remove(ctx, r.store, store.KeyCurrentUser)
}
