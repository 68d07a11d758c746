package milestone

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrConfigNotFound  = gerrors.New("progress configuration not found")
	ErrConfigNameTaken = gerrors.New("progress configuration name already exists")
)

type ConfigRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Config, error)
	GetByName(ctx context.Context, name string) (Config, error)
	List(ctx context.Context) ([]Config, error)
	Create(ctx context.Context, cfg Config) (Config, error)
}
