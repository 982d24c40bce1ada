package translations

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/goliatone/go-globalize/internal/registry"
)

// ErrRowNotFound is returned by Store.Get when no row exists for the pair.
var ErrRowNotFound = errors.New("translations: row not found")

// Store persists translation rows. Implementations never invent rows: a
// missing (owner, locale) pair is reported, not synthesised.
type Store interface {
	Get(ctx context.Context, model *registry.Model, ownerID uuid.UUID, locale string) (*Row, error)
	ListByLocales(ctx context.Context, model *registry.Model, ownerID uuid.UUID, locales []string) ([]*Row, error)
	List(ctx context.Context, model *registry.Model, ownerID uuid.UUID) ([]*Row, error)
	ListForOwners(ctx context.Context, model *registry.Model, ownerIDs []uuid.UUID, locale string) ([]*Row, error)
	Locales(ctx context.Context, model *registry.Model, ownerID uuid.UUID) ([]string, error)
	Insert(ctx context.Context, model *registry.Model, row *Row) error
	Update(ctx context.Context, model *registry.Model, row *Row) error
	DeleteByOwner(ctx context.Context, model *registry.Model, ownerID uuid.UUID) (int, error)
}
