package availability

import (
	"context"
	"fmt"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
)

type StateStore interface {
	Availability(ctx context.Context, itemID string) (model.Availability, error)
	CompareAndSwapAvailability(ctx context.Context, itemID string, expected, next model.Availability) (bool, error)
}

// Guard is the only writer of an item's availability flag.
type Guard struct {
	store StateStore
}

func New(store StateStore) *Guard {
	return &Guard{store: store}
}

// Reserve flips lendable to reserved. The swap itself is the check.
func (g *Guard) Reserve(ctx context.Context, itemID string) error {
	ok, err := g.store.CompareAndSwapAvailability(ctx, itemID, model.Lendable, model.Reserved)
	if err != nil {
		return fmt.Errorf("reserve %s: %w", itemID, err)
	}
	if !ok {
		return errs.ErrUnavailable
	}
	return nil
}

// Release flips reserved back to lendable. Any other state is left as is.
func (g *Guard) Release(ctx context.Context, itemID string) error {
	if _, err := g.store.CompareAndSwapAvailability(ctx, itemID, model.Reserved, model.Lendable); err != nil {
		return fmt.Errorf("release %s: %w", itemID, err)
	}
	return nil
}

// IsLendable is a read-only probe for display and filtering.
func (g *Guard) IsLendable(ctx context.Context, itemID string) (bool, error) {
	a, err := g.store.Availability(ctx, itemID)
	if err != nil {
		return false, err
	}
	return IsLendable(a), nil
}

func IsLendable(a model.Availability) bool {
	return a == model.Lendable
}
