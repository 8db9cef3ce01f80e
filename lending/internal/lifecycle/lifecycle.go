package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/availability"
	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/ledger"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/pkg/metrics"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// SystemActor closes requests on behalf of the service itself.
	SystemActor = "system"

	ReasonUnavailable = "item was not available at acceptance"
	ReasonItemTaken   = "item was lent to another request"

	defaultAcceptAttempts = 3
	defaultRetryAttempts  = 2
	defaultRetryDelay     = 10 * time.Millisecond
)

type Publisher interface {
	Publish(ctx context.Context, ev kafka.LendingEvent) error
}

// Lifecycle drives borrow requests through their states. Each operation is a
// single store transaction; events are published only after it commits.
type Lifecycle struct {
	store     repository.Store
	ledger    *ledger.Ledger
	publisher Publisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string

	acceptAttempts uint
	retryAttempts  uint
	retryDelay     time.Duration

	log *zap.Logger
}

type Option func(l *Lifecycle)

func WithPublisher(p Publisher) Option {
	return func(l *Lifecycle) {
		l.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Lifecycle) {
		l.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) {
		l.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Lifecycle) {
		l.newID = newID
	}
}

// WithAcceptAttempts bounds how many times Accept runs when the store reports a conflict.
func WithAcceptAttempts(n uint) Option {
	return func(l *Lifecycle) {
		if n > 0 {
			l.acceptAttempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(l *Lifecycle) {
		l.retryDelay = d
	}
}

func New(store repository.Store, ledger *ledger.Ledger, log *zap.Logger, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		store:          store,
		ledger:         ledger,
		tracer:         otel.Tracer("lending/lifecycle"),
		now:            time.Now,
		newID:          func() string { return uuid.NewString() },
		acceptAttempts: defaultAcceptAttempts,
		retryAttempts:  defaultRetryAttempts,
		retryDelay:     defaultRetryDelay,
		log:            log.Named("lifecycle"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lifecycle) today() model.Date {
	return model.DayOf(l.now().UTC())
}

// Create opens a pending request. The item is not reserved yet.
func (l *Lifecycle) Create(ctx context.Context, in model.CreateBorrowRequest) (model.BorrowRequest, error) {
	if err := CheckDates(in.StartDate, in.EndDate, l.today()); err != nil {
		return model.BorrowRequest{}, err
	}
	var created model.BorrowRequest
	err := l.run(ctx, "create", l.retryAttempts, func(ctx context.Context, tx repository.Tx, box *outbox) error {
		item, err := tx.GetItem(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item.OwnerID == in.BorrowerID {
			return errs.ErrNotBorrower
		}
		lendable, err := availability.New(tx).IsLendable(ctx, item.ID)
		if err != nil {
			return err
		}
		if !lendable {
			return errs.ErrUnavailable
		}
		dup, err := tx.HasPendingRequest(ctx, item.ID, in.BorrowerID)
		if err != nil {
			return err
		}
		if dup {
			return errs.ErrDuplicatePending
		}

		now := l.now().UTC()
		req := model.BorrowRequest{
			ID:         l.newID(),
			ItemID:     item.ID,
			OwnerID:    item.OwnerID,
			BorrowerID: in.BorrowerID,
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
			Note:       in.Note,
			Fee:        item.Fee,
			State:      model.StatePending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err = tx.InsertRequest(ctx, req); err != nil {
			return err
		}
		l.emit(box, kafka.EventRequestCreated, req, in.BorrowerID, "")
		created = req
		return nil
	})
	return created, err
}

// Accept reserves the item for the request and rejects every other pending
// request on it. If the item cannot be reserved the request is rejected and
// errs.ErrUnavailable is returned.
func (l *Lifecycle) Accept(ctx context.Context, requestID, lenderID string) (model.BorrowRequest, error) {
	var (
		accepted model.BorrowRequest
		attempt  int
	)
	err := l.run(ctx, "accept", l.acceptAttempts, func(ctx context.Context, tx repository.Tx, box *outbox) error {
		attempt++
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.OwnerID != lenderID {
			return errs.ErrNotOwner
		}
		if err = checkTransition(req.State, model.StateAccepted); err != nil {
			// a retry that finds us rejected by a sibling's acceptance lost the race
			if attempt > 1 && req.State == model.StateRejected && req.Reason == ReasonItemTaken {
				return errs.ErrUnavailable
			}
			return err
		}

		if err = availability.New(tx).Reserve(ctx, req.ItemID); err != nil {
			if !errors.Is(err, errs.ErrUnavailable) {
				return err
			}
			if err = l.transition(ctx, tx, box, &req, model.StateRejected, ReasonUnavailable, SystemActor); err != nil {
				return err
			}
			accepted = req
			box.outcome = errs.ErrUnavailable
			return nil
		}
		if err = l.transition(ctx, tx, box, &req, model.StateAccepted, "", lenderID); err != nil {
			return err
		}

		siblings, err := tx.ListRequestsByItem(ctx, req.ItemID, model.StatePending)
		if err != nil {
			return err
		}
		for i := range siblings {
			if err = l.transition(ctx, tx, box, &siblings[i], model.StateRejected, ReasonItemTaken, SystemActor); err != nil {
				return err
			}
		}

		if started(req, l.today()) {
			if err = l.transition(ctx, tx, box, &req, model.StateActive, "", SystemActor); err != nil {
				return err
			}
		}
		accepted = req
		return nil
	})
	if errors.Is(err, errs.ErrStoreConflict) {
		return model.BorrowRequest{}, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return accepted, err
}

func (l *Lifecycle) Reject(ctx context.Context, requestID, lenderID, reason string) (model.BorrowRequest, error) {
	var rejected model.BorrowRequest
	err := l.run(ctx, "reject", l.retryAttempts, func(ctx context.Context, tx repository.Tx, box *outbox) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.OwnerID != lenderID {
			return errs.ErrNotOwner
		}
		if err = l.transition(ctx, tx, box, &req, model.StateRejected, reason, lenderID); err != nil {
			return err
		}
		rejected = req
		return nil
	})
	return rejected, err
}

// Activate starts an accepted loan once its start date has arrived.
func (l *Lifecycle) Activate(ctx context.Context, requestID string) (model.BorrowRequest, error) {
	var active model.BorrowRequest
	err := l.run(ctx, "activate", l.retryAttempts, func(ctx context.Context, tx repository.Tx, box *outbox) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.State == model.StateAccepted && !started(req, l.today()) {
			return fmt.Errorf("loan starts on %s: %w", req.StartDate, errs.ErrInvalidTransition)
		}
		if err = l.transition(ctx, tx, box, &req, model.StateActive, "", SystemActor); err != nil {
			return err
		}
		active = req
		return nil
	})
	return active, err
}

// Complete closes an active loan on behalf of one of its parties: the item
// is released and the history record appended in the same transaction, so a
// failed append leaves the request active and Complete can simply be called
// again. A supplied return date must fall between the start date and today.
func (l *Lifecycle) Complete(ctx context.Context, requestID, actorID string, returnDate model.Date) (model.BorrowRequest, error) {
	return l.complete(ctx, requestID, actorID, returnDate, false)
}

// CompleteOverdue closes a loan past its end date as SystemActor.
func (l *Lifecycle) CompleteOverdue(ctx context.Context, requestID string, returnDate model.Date) (model.BorrowRequest, error) {
	return l.complete(ctx, requestID, SystemActor, returnDate, true)
}

func (l *Lifecycle) complete(ctx context.Context, requestID, actorID string, returnDate model.Date, system bool) (model.BorrowRequest, error) {
	var completed model.BorrowRequest
	err := l.run(ctx, "complete", l.retryAttempts, func(ctx context.Context, tx repository.Tx, box *outbox) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if !system && !req.IsParty(actorID) {
			return errs.ErrNotParticipant
		}
		if err = l.activateIfStarted(ctx, tx, box, &req); err != nil {
			return err
		}
		if err = checkTransition(req.State, model.StateCompleted); err != nil {
			return err
		}
		today := l.today()
		if returnDate.IsZero() {
			returnDate = today
		}
		if returnDate.Before(req.StartDate) || returnDate.After(today) {
			return errs.ErrInvalidDateRange
		}
		if err = l.close(ctx, tx, box, &req, model.HistoryCompleted, actorID, "", returnDate); err != nil {
			return err
		}
		l.emit(box, kafka.EventSettlementDue, req, actorID, "")
		completed = req
		return nil
	})
	return completed, err
}

// Dispute closes an active loan as disputed. The item is released like on completion.
func (l *Lifecycle) Dispute(ctx context.Context, requestID, actorID, reason string) (model.BorrowRequest, error) {
	var disputed model.BorrowRequest
	err := l.run(ctx, "dispute", l.retryAttempts, func(ctx context.Context, tx repository.Tx, box *outbox) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if !req.IsParty(actorID) {
			return errs.ErrNotParticipant
		}
		if err = l.activateIfStarted(ctx, tx, box, &req); err != nil {
			return err
		}
		if err = checkTransition(req.State, model.StateDisputed); err != nil {
			return err
		}
		if err = l.close(ctx, tx, box, &req, model.HistoryDisputed, actorID, reason, l.today()); err != nil {
			return err
		}
		disputed = req
		return nil
	})
	return disputed, err
}

func (l *Lifecycle) activateIfStarted(ctx context.Context, tx repository.Tx, box *outbox, req *model.BorrowRequest) error {
	if req.State != model.StateAccepted || !started(*req, l.today()) {
		return nil
	}
	return l.transition(ctx, tx, box, req, model.StateActive, "", SystemActor)
}

func (l *Lifecycle) close(ctx context.Context, tx repository.Tx, box *outbox, req *model.BorrowRequest,
	status model.HistoryStatus, actorID, reason string, returnDate model.Date,
) error {
	to := model.StateCompleted
	if status == model.HistoryDisputed {
		to = model.StateDisputed
	}
	if err := availability.New(tx).Release(ctx, req.ItemID); err != nil {
		return err
	}
	_, err := l.ledger.Append(ctx, tx, ledger.Entry{
		RequestID:  req.ID,
		ItemID:     req.ItemID,
		OwnerID:    req.OwnerID,
		BorrowerID: req.BorrowerID,
		ReturnDate: returnDate,
		Status:     status,
	})
	if err != nil {
		return err
	}
	return l.transition(ctx, tx, box, req, to, reason, actorID)
}

// transition is the only place a request changes state.
func (l *Lifecycle) transition(ctx context.Context, tx repository.Tx, box *outbox, req *model.BorrowRequest,
	to model.RequestState, reason, actorID string,
) error {
	if err := checkTransition(req.State, to); err != nil {
		return err
	}
	at := l.now().UTC()
	ok, err := tx.UpdateRequestState(ctx, req.ID, model.Transition{
		From:     req.State,
		To:       to,
		Reason:   reason,
		ClosedBy: actorID,
		At:       at,
	})
	if err != nil {
		return fmt.Errorf("update request %s: %w", req.ID, err)
	}
	if !ok {
		return fmt.Errorf("request %s changed concurrently: %w", req.ID, errs.ErrStoreConflict)
	}
	req.State = to
	req.UpdatedAt = at
	if reason != "" {
		req.Reason = reason
	}
	if to.Terminal() {
		req.ClosedBy = actorID
	}
	l.emit(box, eventType(to), *req, actorID, reason)
	return nil
}

type outbox struct {
	events []kafka.LendingEvent
	// outcome is returned to the caller after a successful commit.
	outcome error
}

func (l *Lifecycle) emit(box *outbox, typ kafka.EventType, req model.BorrowRequest, actorID, reason string) {
	ev := kafka.LendingEvent{
		ID:         l.newID(),
		Type:       typ,
		RequestID:  req.ID,
		ItemID:     req.ItemID,
		OwnerID:    req.OwnerID,
		BorrowerID: req.BorrowerID,
		ActorID:    actorID,
		Reason:     reason,
		Timestamp:  l.now().UTC(),
	}
	if typ == kafka.EventSettlementDue {
		ev.Amount = req.Settlement()
	}
	box.events = append(box.events, ev)
}

func (l *Lifecycle) run(ctx context.Context, op string, attempts uint,
	fn func(ctx context.Context, tx repository.Tx, box *outbox) error,
) error {
	ctx, span := l.tracer.Start(ctx, "lifecycle."+op, trace.WithAttributes(attribute.String("lending.op", op)))
	defer span.End()
	begin := time.Now()

	var box outbox
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		box = outbox{}
		err := l.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			return fn(ctx, tx, &box)
		})
		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, errs.ErrStoreConflict):
			l.metrics.Retry(op)
			l.log.Debug("store conflict", zap.String("op", op), zap.Error(err))
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(l.backOff()), backoff.WithMaxTries(attempts))

	if err == nil {
		err = box.outcome
		l.publish(ctx, box.events)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	l.metrics.Observe(op, begin, err)
	return err
}

func (l *Lifecycle) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.retryDelay
	b.MaxInterval = 20 * l.retryDelay
	return b
}

func (l *Lifecycle) publish(ctx context.Context, events []kafka.LendingEvent) {
	if l.publisher == nil {
		return
	}
	for _, ev := range events {
		if err := l.publisher.Publish(ctx, ev); err != nil {
			l.log.Warn("publish event",
				zap.String("type", string(ev.Type)),
				zap.String("request", ev.RequestID),
				zap.Error(err))
		}
	}
}
