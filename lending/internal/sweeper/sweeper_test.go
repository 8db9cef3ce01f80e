package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/ledger"
	"github.com/Astemirdum/lending-service/lending/internal/lifecycle"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository/memstore"
	"github.com/Astemirdum/lending-service/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweeper_SweepOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	day0 := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	now := day0

	store := memstore.New()
	clock := func() time.Time { return now }
	lc := lifecycle.New(store, ledger.New(store, zap.NewNop()), zap.NewNop(),
		lifecycle.WithClock(clock), lifecycle.WithRetryDelay(0))
	m := metrics.New(prometheus.NewRegistry())
	sw := New(store, lc, time.Minute, zap.NewNop(),
		WithClock(clock), WithGraceDays(1), WithMetrics(m))

	for _, id := range []string{"bike", "kite"} {
		require.NoError(t, store.CreateItem(ctx, model.Item{
			ID: id, OwnerID: "alice", Fee: 100, Availability: model.Lendable, CreatedAt: day0,
		}))
	}
	today := model.DayOf(day0)
	bike, err := lc.Create(ctx, model.CreateBorrowRequest{
		ItemID: "bike", BorrowerID: "bob", StartDate: today.AddDays(1), EndDate: today.AddDays(3),
	})
	require.NoError(t, err)
	kite, err := lc.Create(ctx, model.CreateBorrowRequest{
		ItemID: "kite", BorrowerID: "carol", StartDate: today.AddDays(2), EndDate: today.AddDays(4),
	})
	require.NoError(t, err)
	_, err = lc.Accept(ctx, bike.ID, "alice")
	require.NoError(t, err)
	_, err = lc.Accept(ctx, kite.ID, "alice")
	require.NoError(t, err)

	require.Equal(t, Result{}, sw.SweepOnce(ctx))

	now = day0.AddDate(0, 0, 1)
	require.Equal(t, Result{Activated: 1}, sw.SweepOnce(ctx))
	got, err := store.GetRequest(ctx, bike.ID)
	require.NoError(t, err)
	require.Equal(t, model.StateActive, got.State)

	// the bike ends on day 3; with one day of grace it closes on day 5
	now = day0.AddDate(0, 0, 4)
	require.Equal(t, Result{Activated: 1}, sw.SweepOnce(ctx))

	now = day0.AddDate(0, 0, 5)
	require.Equal(t, Result{Completed: 1}, sw.SweepOnce(ctx))

	got, err = store.GetRequest(ctx, bike.ID)
	require.NoError(t, err)
	require.Equal(t, model.StateCompleted, got.State)
	require.Equal(t, lifecycle.SystemActor, got.ClosedBy)

	rec, err := store.GetHistory(ctx, bike.ID)
	require.NoError(t, err)
	require.True(t, rec.ReturnDate.Equal(today.AddDays(3)))

	item, err := store.GetItem(ctx, "bike")
	require.NoError(t, err)
	require.Equal(t, model.Lendable, item.Availability)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Sweeps.WithLabelValues("activated")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Sweeps.WithLabelValues("completed")))
}

func TestSweeper_RunStops(t *testing.T) {
	t.Parallel()
	store := memstore.New()
	lc := lifecycle.New(store, ledger.New(store, zap.NewNop()), zap.NewNop())
	sw := New(store, lc, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
