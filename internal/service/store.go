package service

import (
	"context"

	"github.com/iliyamo/social-media-api/internal/model"
	"github.com/iliyamo/social-media-api/internal/repository"
)

var (
	_ AccountStore = (*repository.AccountRepo)(nil)
	_ AccountStore = (*repository.MemoryAccountRepo)(nil)
	_ MessageStore = (*repository.MessageRepo)(nil)
	_ MessageStore = (*repository.MemoryMessageRepo)(nil)
)

// AccountStore is the persistence contract the account service depends on.
// *repository.AccountRepo implements it.
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	GetAll(ctx context.Context) ([]model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ValidateCredentials(ctx context.Context, username, password string) (*model.Account, error)
	Insert(ctx context.Context, a model.Account) (*model.Account, error)
	Update(ctx context.Context, a model.Account) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// MessageStore is the persistence contract the message service depends on.
// *repository.MessageRepo implements it.
type MessageStore interface {
	GetByID(ctx context.Context, id int64) (*model.Message, error)
	GetAll(ctx context.Context) ([]model.Message, error)
	GetByPoster(ctx context.Context, accountID int64) ([]model.Message, error)
	Insert(ctx context.Context, m model.Message) (*model.Message, error)
	Update(ctx context.Context, m model.Message) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
