// Package memstore is a single-process Store. Transactions are serialized by
// one mutex and rolled back from a snapshot, which makes it suitable for tests
// and local runs but not for several service instances sharing state.
package memstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
)

// Fault is consulted before every store operation; a non-nil result is returned instead.
type Fault func(op string) error

type state struct {
	items     map[string]model.Item
	requests  map[string]model.BorrowRequest
	history   map[string]model.LoanHistoryRecord
	locations map[string]model.Location
}

func (s state) clone() state {
	return state{
		items:     maps.Clone(s.items),
		requests:  maps.Clone(s.requests),
		history:   maps.Clone(s.history),
		locations: maps.Clone(s.locations),
	}
}

type Store struct {
	mu    sync.Mutex
	st    state
	fault Fault
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		st: state{
			items:     map[string]model.Item{},
			requests:  map[string]model.BorrowRequest{},
			history:   map[string]model.LoanHistoryRecord{},
			locations: map[string]model.Location{},
		},
	}
}

// SetFault installs f; nil removes it.
func (s *Store) SetFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

func (s *Store) check(op string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op)
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.st.clone()
	if err := fn(ctx, &tx{s: s}); err != nil {
		s.st = snap
		return err
	}
	return nil
}

func (s *Store) CreateItem(_ context.Context, item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("CreateItem"); err != nil {
		return err
	}
	s.st.items[item.ID] = item
	return nil
}

func (s *Store) GetItem(_ context.Context, itemID string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getItem(itemID)
}

func (s *Store) getItem(itemID string) (model.Item, error) {
	item, ok := s.st.items[itemID]
	if !ok {
		return model.Item{}, errs.ErrNotFound
	}
	return item, nil
}

func (s *Store) ListItemsByOwner(_ context.Context, ownerID string) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Item
	for _, item := range s.st.items {
		if item.OwnerID == ownerID {
			out = append(out, item)
		}
	}
	sortItems(out)
	return out, nil
}

func (s *Store) ListLendableItems(_ context.Context, f model.ItemFilter) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("ListLendableItems"); err != nil {
		return nil, err
	}
	name := strings.ToLower(f.Name)
	var out []model.Item
	for _, item := range s.st.items {
		switch {
		case item.Availability != model.Lendable,
			f.ExcludeOwnerID != "" && item.OwnerID == f.ExcludeOwnerID,
			name != "" && !strings.Contains(strings.ToLower(item.Name), name),
			f.CategoryID != "" && (item.CategoryID == nil || *item.CategoryID != f.CategoryID),
			f.Condition != "" && item.Condition != f.Condition,
			f.AgeRange != "" && item.SuitableAge != f.AgeRange:
			continue
		}
		out = append(out, item)
	}
	sortItems(out)
	return out, nil
}

func sortItems(items []model.Item) {
	slices.SortFunc(items, func(a, b model.Item) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func (s *Store) GetRequest(_ context.Context, requestID string) (model.BorrowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getRequest(requestID)
}

func (s *Store) getRequest(requestID string) (model.BorrowRequest, error) {
	req, ok := s.st.requests[requestID]
	if !ok {
		return model.BorrowRequest{}, errs.ErrNotFound
	}
	return req, nil
}

func (s *Store) ListRequestsByItem(_ context.Context, itemID string, st model.RequestState) ([]model.BorrowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterRequests(func(r model.BorrowRequest) bool {
		return r.ItemID == itemID && (st == "" || r.State == st)
	}), nil
}

func (s *Store) ListRequestsByBorrower(_ context.Context, borrowerID string) ([]model.BorrowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterRequests(func(r model.BorrowRequest) bool {
		return r.BorrowerID == borrowerID
	}), nil
}

func (s *Store) ListStartingBy(_ context.Context, day model.Date) ([]model.BorrowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterRequests(func(r model.BorrowRequest) bool {
		return r.State == model.StateAccepted && !r.StartDate.After(day)
	}), nil
}

func (s *Store) ListEndingBefore(_ context.Context, day model.Date) ([]model.BorrowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterRequests(func(r model.BorrowRequest) bool {
		return r.State == model.StateActive && r.EndDate.Before(day)
	}), nil
}

func (s *Store) filterRequests(keep func(r model.BorrowRequest) bool) []model.BorrowRequest {
	var out []model.BorrowRequest
	for _, r := range s.st.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b model.BorrowRequest) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Store) GetHistory(_ context.Context, requestID string) (model.LoanHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.st.history[requestID]
	if !ok {
		return model.LoanHistoryRecord{}, errs.ErrNotFound
	}
	return rec, nil
}

func (s *Store) ListHistoryByOwner(_ context.Context, ownerID string) ([]model.LoanHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LoanHistoryRecord
	for _, rec := range s.st.history {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b model.LoanHistoryRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.RequestID, b.RequestID)
	})
	return out, nil
}

func (s *Store) RatingSummary(_ context.Context, ownerID string) (model.RatingSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum model.RatingSummary
	for _, rec := range s.st.history {
		if rec.OwnerID == ownerID && rec.Status == model.HistoryCompleted && rec.Rating != nil {
			sum.Count++
			sum.Sum += int64(*rec.Rating)
		}
	}
	return sum, nil
}

func (s *Store) SetRating(_ context.Context, requestID string, rating int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("SetRating"); err != nil {
		return false, err
	}
	rec, ok := s.st.history[requestID]
	if !ok {
		return false, errs.ErrNotFound
	}
	if rec.Rating != nil {
		return false, nil
	}
	rec.Rating = &rating
	s.st.history[requestID] = rec
	return true, nil
}

func (s *Store) GetLocation(_ context.Context, actorID string) (model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.st.locations[actorID]
	if !ok {
		return model.Location{}, errs.ErrNotFound
	}
	return loc, nil
}

func (s *Store) GetLocations(_ context.Context, actorIDs []string) (map[string]model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.Location, len(actorIDs))
	for _, id := range actorIDs {
		if loc, ok := s.st.locations[id]; ok {
			out[id] = loc
		}
	}
	return out, nil
}

func (s *Store) UpsertLocation(_ context.Context, loc model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("UpsertLocation"); err != nil {
		return err
	}
	s.st.locations[loc.ActorID] = loc
	return nil
}

// tx runs with Store.mu held by InTx.
type tx struct {
	s *Store
}

func (t *tx) GetItem(_ context.Context, itemID string) (model.Item, error) {
	if err := t.s.check("GetItem"); err != nil {
		return model.Item{}, err
	}
	return t.s.getItem(itemID)
}

func (t *tx) Availability(_ context.Context, itemID string) (model.Availability, error) {
	item, err := t.s.getItem(itemID)
	if err != nil {
		return "", err
	}
	return item.Availability, nil
}

func (t *tx) CompareAndSwapAvailability(_ context.Context, itemID string, expected, next model.Availability) (bool, error) {
	if err := t.s.check("CompareAndSwapAvailability"); err != nil {
		return false, err
	}
	item, err := t.s.getItem(itemID)
	if err != nil {
		return false, err
	}
	if item.Availability != expected {
		return false, nil
	}
	item.Availability = next
	t.s.st.items[itemID] = item
	return true, nil
}

func (t *tx) GetRequest(_ context.Context, requestID string) (model.BorrowRequest, error) {
	if err := t.s.check("GetRequest"); err != nil {
		return model.BorrowRequest{}, err
	}
	return t.s.getRequest(requestID)
}

func (t *tx) HasPendingRequest(_ context.Context, itemID, borrowerID string) (bool, error) {
	for _, r := range t.s.st.requests {
		if r.ItemID == itemID && r.BorrowerID == borrowerID && r.State == model.StatePending {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) InsertRequest(ctx context.Context, req model.BorrowRequest) error {
	if err := t.s.check("InsertRequest"); err != nil {
		return err
	}
	if req.State == model.StatePending {
		dup, _ := t.HasPendingRequest(ctx, req.ItemID, req.BorrowerID)
		if dup {
			return errs.ErrDuplicatePending
		}
	}
	t.s.st.requests[req.ID] = req
	return nil
}

func (t *tx) ListRequestsByItem(_ context.Context, itemID string, st model.RequestState) ([]model.BorrowRequest, error) {
	return t.s.filterRequests(func(r model.BorrowRequest) bool {
		return r.ItemID == itemID && (st == "" || r.State == st)
	}), nil
}

func (t *tx) UpdateRequestState(_ context.Context, requestID string, tr model.Transition) (bool, error) {
	if err := t.s.check("UpdateRequestState"); err != nil {
		return false, err
	}
	req, err := t.s.getRequest(requestID)
	if err != nil {
		return false, err
	}
	if req.State != tr.From {
		return false, nil
	}
	req.State = tr.To
	req.UpdatedAt = tr.At
	if tr.Reason != "" {
		req.Reason = tr.Reason
	}
	if tr.To.Terminal() {
		req.ClosedBy = tr.ClosedBy
	}
	t.s.st.requests[requestID] = req
	return true, nil
}

func (t *tx) InsertHistory(_ context.Context, rec model.LoanHistoryRecord) error {
	if err := t.s.check("InsertHistory"); err != nil {
		return err
	}
	if _, ok := t.s.st.history[rec.RequestID]; ok {
		return errs.ErrDuplicateRecord
	}
	t.s.st.history[rec.RequestID] = rec
	return nil
}
