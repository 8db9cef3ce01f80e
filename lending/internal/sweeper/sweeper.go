package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/pkg/metrics"
	"go.uber.org/zap"
)

type Lister interface {
	ListStartingBy(ctx context.Context, day model.Date) ([]model.BorrowRequest, error)
	ListEndingBefore(ctx context.Context, day model.Date) ([]model.BorrowRequest, error)
}

type Lifecycle interface {
	Activate(ctx context.Context, requestID string) (model.BorrowRequest, error)
	CompleteOverdue(ctx context.Context, requestID string, returnDate model.Date) (model.BorrowRequest, error)
}

// Sweeper starts accepted loans on their start date and closes active loans
// whose end date passed more than grace days ago.
type Sweeper struct {
	store    Lister
	lc       Lifecycle
	metrics  *metrics.Metrics
	interval time.Duration
	grace    int
	now      func() time.Time
	log      *zap.Logger
}

type Option func(s *Sweeper)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// WithGraceDays delays automatic completion by n days after the end date.
func WithGraceDays(n int) Option {
	return func(s *Sweeper) {
		if n >= 0 {
			s.grace = n
		}
	}
}

func New(store Lister, lc Lifecycle, interval time.Duration, log *zap.Logger, opts ...Option) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	s := &Sweeper{
		store:    store,
		lc:       lc,
		interval: interval,
		now:      time.Now,
		log:      log.Named("sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.SweepOnce(ctx)
		}
	}
}

// Result counts the requests moved by one sweep.
type Result struct {
	Activated int
	Completed int
	Failed    int
}

func (s *Sweeper) SweepOnce(ctx context.Context) Result {
	start := time.Now()
	today := model.DayOf(s.now().UTC())
	var res Result

	starting, err := s.store.ListStartingBy(ctx, today)
	if err != nil {
		s.log.Error("list starting loans", zap.Error(err))
	}
	for _, req := range starting {
		if _, err = s.lc.Activate(ctx, req.ID); err != nil {
			s.failed(&res, "activate", req.ID, err)
			continue
		}
		res.Activated++
	}

	overdue, err := s.store.ListEndingBefore(ctx, today.AddDays(-s.grace))
	if err != nil {
		s.log.Error("list overdue loans", zap.Error(err))
	}
	for _, req := range overdue {
		if _, err = s.lc.CompleteOverdue(ctx, req.ID, req.EndDate); err != nil {
			s.failed(&res, "complete", req.ID, err)
			continue
		}
		res.Completed++
	}

	s.metrics.Swept("activated", res.Activated)
	s.metrics.Swept("completed", res.Completed)
	s.metrics.Swept("failed", res.Failed)
	if res != (Result{}) {
		s.log.Info("sweep",
			zap.Int("activated", res.Activated),
			zap.Int("completed", res.Completed),
			zap.Int("failed", res.Failed),
			zap.Duration("latency", time.Since(start)))
	}
	return res
}

func (s *Sweeper) failed(res *Result, op, requestID string, err error) {
	// a participant got there first
	if errors.Is(err, errs.ErrAlreadyCompleted) || errors.Is(err, errs.ErrTerminalState) {
		return
	}
	res.Failed++
	s.log.Warn(op, zap.String("request", requestID), zap.Error(err))
}
