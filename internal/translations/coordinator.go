package translations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-globalize/internal/logging"
	"github.com/goliatone/go-globalize/internal/registry"
	"github.com/goliatone/go-globalize/pkg/interfaces"
)

// FlushResult describes what happened to one dirty locale. Row is the
// stored row after the flush, nil when nothing was written.
type FlushResult struct {
	Locale    string
	Inserted  bool
	Persisted bool
	Row       *Row
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorClock overrides the clock used to stamp rows.
func WithCoordinatorClock(clock func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithCoordinatorIDs overrides the row id generator.
func WithCoordinatorIDs(generator func() uuid.UUID) CoordinatorOption {
	return func(c *Coordinator) {
		if generator != nil {
			c.id = generator
		}
	}
}

// WithCoordinatorLogger sets the coordinator logger.
func WithCoordinatorLogger(logger interfaces.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Coordinator turns staged cache writes into stored translation rows. It is
// meant to run inside the transaction that saved the owner row.
type Coordinator struct {
	now    func() time.Time
	id     func() uuid.UUID
	logger interfaces.Logger
}

// NewCoordinator builds a coordinator.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type pendingRow struct {
	row    *Row
	exists bool
	skip   bool
}

// Flush validates every dirty locale of cache and then inserts or updates
// one row per locale through store. Only staged attributes are applied, so
// sibling attributes keep their stored values. Nothing is written when any
// locale fails validation.
//
// Flush does not touch the dirty flags; callers clear them with
// AttributeCache.MarkFlushed once the surrounding transaction commits.
func (c *Coordinator) Flush(ctx context.Context, store Store, model *registry.Model, ownerID uuid.UUID, cache *AttributeCache) ([]FlushResult, error) {
	locales := cache.DirtyLocales()
	if len(locales) == 0 {
		return nil, nil
	}
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("translations: flushing %s requires a saved owner", model.Name())
	}

	required := len(model.RequiredAttributes()) > 0
	pending := make([]pendingRow, 0, len(locales))
	for _, code := range locales {
		row, err := store.Get(ctx, model, ownerID, code)
		exists := true
		if errors.Is(err, ErrRowNotFound) {
			row = NewRow(c.id(), ownerID, code)
			exists = false
		} else if err != nil {
			return nil, err
		}

		for attribute, value := range cache.Staged(code) {
			row.Values[attribute] = value
		}

		if !exists && !required && row.Empty() {
			pending = append(pending, pendingRow{row: row, skip: true})
			continue
		}
		if err := model.Validate(row.Values); err != nil {
			return nil, &ValidationError{Model: model.Name(), Locale: code, Err: err}
		}
		pending = append(pending, pendingRow{row: row, exists: exists})
	}

	now := c.now()
	results := make([]FlushResult, 0, len(pending))
	for _, item := range pending {
		if item.skip {
			c.logger.Debug("translations.flush.skip_empty", "model", model.Name(), "locale", item.row.Locale)
			results = append(results, FlushResult{Locale: item.row.Locale})
			continue
		}

		item.row.UpdatedAt = now
		if item.exists {
			if err := store.Update(ctx, model, item.row); err != nil {
				return nil, fmt.Errorf("update %s translation %q: %w", model.Name(), item.row.Locale, err)
			}
		} else {
			item.row.CreatedAt = now
			if err := store.Insert(ctx, model, item.row); err != nil {
				return nil, fmt.Errorf("insert %s translation %q: %w", model.Name(), item.row.Locale, err)
			}
		}
		results = append(results, FlushResult{Locale: item.row.Locale, Inserted: !item.exists, Persisted: true, Row: cloneRow(item.row)})
	}

	c.logger.Debug("translations.flush", "model", model.Name(), "owner_id", ownerID.String(), "locales", locales)
	return results, nil
}
