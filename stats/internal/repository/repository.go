package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/stats/internal/model"
)

const eventsTableName = "events"

var dialect = goqu.Dialect("postgres")

type Repository interface {
	GetStats(ctx context.Context, actorID string) (model.StatsInfo, error)
	Record(ctx context.Context, event kafka.LendingEvent) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

// Record stores the event once; a redelivered event id is ignored.
func (r *repository) Record(ctx context.Context, event kafka.LendingEvent) error {
	query, args, err := dialect.Insert(eventsTableName).
		Rows(goqu.Record{
			"id":          event.ID,
			"type":        string(event.Type),
			"request_id":  event.RequestID,
			"item_id":     event.ItemID,
			"owner_id":    event.OwnerID,
			"borrower_id": event.BorrowerID,
			"actor_id":    event.ActorID,
			"amount":      event.Amount,
			"rating":      event.Rating,
			"ts":          event.Timestamp,
		}).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	r.log.Debug("Record", zap.String("query", query), zap.Any("args", args))
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

type ownerRow struct {
	ActorID     string    `db:"actor_id"`
	Lent        int       `db:"lent"`
	Disputes    int       `db:"disputes"`
	AvgRating   *float64  `db:"avg_rating"`
	Earned      int64     `db:"earned"`
	LastEventAt time.Time `db:"last_event_at"`
}

type borrowerRow struct {
	ActorID     string    `db:"actor_id"`
	Borrowed    int       `db:"borrowed"`
	Disputes    int       `db:"disputes"`
	Paid        int64     `db:"paid"`
	LastEventAt time.Time `db:"last_event_at"`
}

// GetStats aggregates per actor; an empty actorID returns every actor.
func (r *repository) GetStats(ctx context.Context, actorID string) (model.StatsInfo, error) {
	var (
		owners    []ownerRow
		borrowers []borrowerRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds := dialect.From(eventsTableName).
			Select(
				goqu.C("owner_id").As("actor_id"),
				goqu.L("count(*) FILTER (WHERE type IN (?, ?))", string(kafka.EventLoanCompleted), string(kafka.EventLoanDisputed)).As("lent"),
				goqu.L("count(*) FILTER (WHERE type = ?)", string(kafka.EventLoanDisputed)).As("disputes"),
				goqu.L("(avg(rating) FILTER (WHERE type = ?))::float8", string(kafka.EventLoanRated)).As("avg_rating"),
				goqu.L("coalesce(sum(amount) FILTER (WHERE type = ?), 0)", string(kafka.EventSettlementDue)).As("earned"),
				goqu.MAX("ts").As("last_event_at"),
			).
			GroupBy("owner_id")
		if actorID != "" {
			ds = ds.Where(goqu.C("owner_id").Eq(actorID))
		}
		return r.selectInto(gctx, &owners, ds)
	})
	g.Go(func() error {
		ds := dialect.From(eventsTableName).
			Select(
				goqu.C("borrower_id").As("actor_id"),
				goqu.L("count(*) FILTER (WHERE type IN (?, ?))", string(kafka.EventLoanCompleted), string(kafka.EventLoanDisputed)).As("borrowed"),
				goqu.L("count(*) FILTER (WHERE type = ?)", string(kafka.EventLoanDisputed)).As("disputes"),
				goqu.L("coalesce(sum(amount) FILTER (WHERE type = ?), 0)", string(kafka.EventSettlementDue)).As("paid"),
				goqu.MAX("ts").As("last_event_at"),
			).
			GroupBy("borrower_id")
		if actorID != "" {
			ds = ds.Where(goqu.C("borrower_id").Eq(actorID))
		}
		return r.selectInto(gctx, &borrowers, ds)
	})
	if err := g.Wait(); err != nil {
		return model.StatsInfo{}, err
	}
	return model.StatsInfo{Data: merge(owners, borrowers)}, nil
}

func (r *repository) selectInto(ctx context.Context, dest any, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("select events: %w", err)
	}
	r.log.Debug("GetStats", zap.String("query", query), zap.Any("args", args))
	if err = r.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("sqlx.Select: %w", err)
	}
	return nil
}

// merge joins both sides of every actor, ordered by actor id.
func merge(owners []ownerRow, borrowers []borrowerRow) []model.ActorStats {
	byActor := make(map[string]*model.ActorStats, len(owners)+len(borrowers))
	get := func(id string) *model.ActorStats {
		s, ok := byActor[id]
		if !ok {
			s = &model.ActorStats{ActorID: id}
			byActor[id] = s
		}
		return s
	}
	for _, o := range owners {
		s := get(o.ActorID)
		s.Lent = o.Lent
		s.Disputes += o.Disputes
		s.AverageRating = o.AvgRating
		s.Earned = o.Earned
		if o.LastEventAt.After(s.LastEventAt) {
			s.LastEventAt = o.LastEventAt
		}
	}
	for _, b := range borrowers {
		s := get(b.ActorID)
		s.Borrowed = b.Borrowed
		s.Disputes += b.Disputes
		s.Paid = b.Paid
		if b.LastEventAt.After(s.LastEventAt) {
			s.LastEventAt = b.LastEventAt
		}
	}
	out := make([]model.ActorStats, 0, len(byActor))
	for _, s := range byActor {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b model.ActorStats) int {
		return strings.Compare(a.ActorID, b.ActorID)
	})
	return out
}
