package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"go.uber.org/zap"
)

// Writer is the transactional side of the ledger.
type Writer interface {
	InsertHistory(ctx context.Context, rec model.LoanHistoryRecord) error
}

type Store interface {
	GetHistory(ctx context.Context, requestID string) (model.LoanHistoryRecord, error)
	ListHistoryByOwner(ctx context.Context, ownerID string) ([]model.LoanHistoryRecord, error)
	RatingSummary(ctx context.Context, ownerID string) (model.RatingSummary, error)
	SetRating(ctx context.Context, requestID string, rating int) (bool, error)
}

type Entry struct {
	RequestID  string
	ItemID     string
	OwnerID    string
	BorrowerID string
	ReturnDate model.Date
	Status     model.HistoryStatus
}

type Ledger struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

func New(store Store, log *zap.Logger) *Ledger {
	return &Ledger{
		store: store,
		now:   time.Now,
		log:   log.Named("ledger"),
	}
}

// Append writes the single history record of a closed request through w.
// A second append for the same request fails with errs.ErrDuplicateRecord.
func (l *Ledger) Append(ctx context.Context, w Writer, e Entry) (model.LoanHistoryRecord, error) {
	rec := model.LoanHistoryRecord{
		RequestID:  e.RequestID,
		ItemID:     e.ItemID,
		OwnerID:    e.OwnerID,
		BorrowerID: e.BorrowerID,
		ReturnDate: e.ReturnDate,
		Status:     e.Status,
		CreatedAt:  l.now().UTC(),
	}
	if err := w.InsertHistory(ctx, rec); err != nil {
		if errors.Is(err, errs.ErrDuplicateRecord) {
			return model.LoanHistoryRecord{}, err
		}
		return model.LoanHistoryRecord{}, fmt.Errorf("append history %s: %w", e.RequestID, err)
	}
	return rec, nil
}

// AverageRating averages the rated clean completions of the owner's items. No rating yields 0.
func (l *Ledger) AverageRating(ctx context.Context, ownerID string) (model.OwnerRating, error) {
	sum, err := l.store.RatingSummary(ctx, ownerID)
	if err != nil {
		return model.OwnerRating{}, err
	}
	r := model.OwnerRating{OwnerID: ownerID, Count: sum.Count}
	if sum.Count > 0 {
		r.Average = math.Round(float64(sum.Sum)/float64(sum.Count)*100) / 100
	}
	return r, nil
}

// Rate sets the borrower's satisfaction rating once.
func (l *Ledger) Rate(ctx context.Context, requestID, actorID string, rating int) (model.LoanHistoryRecord, error) {
	if rating < 0 || rating > 5 {
		return model.LoanHistoryRecord{}, errs.ErrInvalidRating
	}
	rec, err := l.store.GetHistory(ctx, requestID)
	if err != nil {
		return model.LoanHistoryRecord{}, err
	}
	if rec.BorrowerID != actorID {
		return model.LoanHistoryRecord{}, errs.ErrNotBorrower
	}
	if rec.Status != model.HistoryCompleted {
		return model.LoanHistoryRecord{}, errs.ErrInvalidTransition
	}
	if rec.Rating != nil {
		return model.LoanHistoryRecord{}, errs.ErrAlreadyRated
	}
	ok, err := l.store.SetRating(ctx, requestID, rating)
	if err != nil {
		return model.LoanHistoryRecord{}, fmt.Errorf("SetRating: %w", err)
	}
	if !ok {
		return model.LoanHistoryRecord{}, errs.ErrAlreadyRated
	}
	rec.Rating = &rating
	l.log.Debug("loan rated", zap.String("request", requestID), zap.Int("rating", rating))
	return rec, nil
}

func (l *Ledger) OwnerHistory(ctx context.Context, ownerID string) ([]model.LoanHistoryRecord, error) {
	return l.store.ListHistoryByOwner(ctx, ownerID)
}
