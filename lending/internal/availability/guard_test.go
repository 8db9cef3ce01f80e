package availability_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Astemirdum/lending-service/lending/internal/availability"
	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/stretchr/testify/require"
)

type flagStore struct {
	mu    sync.Mutex
	flags map[string]model.Availability
	err   error
}

func (s *flagStore) Availability(_ context.Context, itemID string) (model.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.flags[itemID]
	if !ok {
		return "", errs.ErrNotFound
	}
	return a, nil
}

func (s *flagStore) CompareAndSwapAvailability(_ context.Context, itemID string, expected, next model.Availability) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.flags[itemID] != expected {
		return false, nil
	}
	s.flags[itemID] = next
	return true, nil
}

func TestGuard_Reserve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		flag    model.Availability
		want    model.Availability
		wantErr error
	}{
		{name: "lendable", flag: model.Lendable, want: model.Reserved},
		{name: "err. reserved", flag: model.Reserved, want: model.Reserved, wantErr: errs.ErrUnavailable},
		{name: "err. unset", flag: model.AvailabilityUnset, want: model.AvailabilityUnset, wantErr: errs.ErrUnavailable},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &flagStore{flags: map[string]model.Availability{"item": tt.flag}}
			err := availability.New(s).Reserve(context.Background(), "item")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, s.flags["item"])
		})
	}
}

func TestGuard_ReleaseIdempotent(t *testing.T) {
	t.Parallel()
	s := &flagStore{flags: map[string]model.Availability{"item": model.Reserved}}
	g := availability.New(s)

	require.NoError(t, g.Release(context.Background(), "item"))
	require.NoError(t, g.Release(context.Background(), "item"))
	require.Equal(t, model.Lendable, s.flags["item"])

	ok, err := g.IsLendable(context.Background(), "item")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGuard_StoreError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	s := &flagStore{flags: map[string]model.Availability{"item": model.Lendable}, err: boom}
	g := availability.New(s)

	require.ErrorIs(t, g.Reserve(context.Background(), "item"), boom)
	require.ErrorIs(t, g.Release(context.Background(), "item"), boom)
}

func TestGuard_ConcurrentReserve(t *testing.T) {
	t.Parallel()
	s := &flagStore{flags: map[string]model.Availability{"item": model.Lendable}}
	g := availability.New(s)

	var won, lost atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Reserve(context.Background(), "item")
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, errs.ErrUnavailable):
				lost.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), won.Load())
	require.Equal(t, int32(63), lost.Load())
}
