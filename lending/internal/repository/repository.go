package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
)

const (
	itemsTableName    = "items"
	requestsTableName = "borrow_requests"
	historyTableName  = "loan_history"
	locationTableName = "locations"

	pendingUniqueIndex   = "borrow_requests_pending_uniq"
	occupancyUniqueIndex = "borrow_requests_occupancy_uniq"
	historyPrimaryKey    = "loan_history_pkey"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	itemColumns = []string{
		"id", "owner_id", "name", "description", "category_id", "condition", "suitable_age",
		"fee", "value", "image_urls", "coalesce(availability, '') AS availability", "created_at", "updated_at",
	}
	requestColumns = []string{
		"id", "item_id", "owner_id", "borrower_id", "start_date", "end_date", "note",
		"fee", "state", "reason", "closed_by", "created_at", "updated_at",
	}
	historyColumns = []string{
		"request_id", "item_id", "owner_id", "borrower_id", "return_date", "rating", "status", "created_at",
	}
	locationColumns = []string{"actor_id", "latitude", "longitude", "address", "updated_at"}
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

var _ Store = (*repository)(nil)

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

func (r *repository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	pgTx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return classify(err)
	}
	defer func() {
		if err != nil {
			if rbErr := pgTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.log.Warn("rollback", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(ctx, &tx{q: pgTx, log: r.log}); err != nil {
		return classify(err)
	}
	if err = pgTx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps driver errors onto the domain sentinels. Errors that are
// already domain errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("%w: %s", errs.ErrStoreConflict, pgErr.Message)
	case pgerrcode.InvalidTextRepresentation, pgerrcode.ForeignKeyViolation:
		return errs.ErrNotFound
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case pendingUniqueIndex:
			return errs.ErrDuplicatePending
		case occupancyUniqueIndex:
			return errs.ErrUnavailable
		case historyPrimaryKey:
			return errs.ErrDuplicateRecord
		}
	}
	return err
}

// items

func (r *repository) CreateItem(ctx context.Context, item model.Item) error {
	if item.ImageURLs == nil {
		item.ImageURLs = []string{}
	}
	query, args, err := qb.Insert(itemsTableName).
		Columns("id", "owner_id", "name", "description", "category_id", "condition", "suitable_age",
			"fee", "value", "image_urls", "availability", "created_at", "updated_at").
		Values(item.ID, item.OwnerID, item.Name, item.Description, item.CategoryID, string(item.Condition),
			string(item.SuitableAge), item.Fee, item.Value, item.ImageURLs,
			sq.Expr("nullif(?, '')", string(item.Availability)), item.CreatedAt, item.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	r.log.Debug("CreateItem", zap.String("query", query), zap.Any("args", args))
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return classify(err)
	}
	return nil
}

func (r *repository) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	return getItem(ctx, r.db, itemID)
}

func (r *repository) ListItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	return listItems(ctx, r.db, qb.Select(itemColumns...).
		From(itemsTableName).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id"))
}

func (r *repository) ListLendableItems(ctx context.Context, f model.ItemFilter) ([]model.Item, error) {
	where := sq.And{sq.Eq{"availability": string(model.Lendable)}}
	if f.ExcludeOwnerID != "" {
		where = append(where, sq.NotEq{"owner_id": f.ExcludeOwnerID})
	}
	if f.Name != "" {
		where = append(where, sq.ILike{"name": "%" + f.Name + "%"})
	}
	if f.CategoryID != "" {
		where = append(where, sq.Eq{"category_id": f.CategoryID})
	}
	if f.Condition != "" {
		where = append(where, sq.Eq{"condition": string(f.Condition)})
	}
	if f.AgeRange != "" {
		where = append(where, sq.Eq{"suitable_age": string(f.AgeRange)})
	}
	return listItems(ctx, r.db, qb.Select(itemColumns...).
		From(itemsTableName).
		Where(where).
		OrderBy("created_at DESC", "id"))
}

func getItem(ctx context.Context, q querier, itemID string) (model.Item, error) {
	items, err := listItems(ctx, q, qb.Select(itemColumns...).
		From(itemsTableName).
		Where(sq.Eq{"id": itemID}))
	if err != nil {
		return model.Item{}, err
	}
	if len(items) == 0 {
		return model.Item{}, errs.ErrNotFound
	}
	return items[0], nil
}

func listItems(ctx context.Context, q querier, b sq.SelectBuilder) ([]model.Item, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Item])
	if err != nil {
		return nil, classify(err)
	}
	return items, nil
}

// requests

type requestRow struct {
	ID         string    `db:"id"`
	ItemID     string    `db:"item_id"`
	OwnerID    string    `db:"owner_id"`
	BorrowerID string    `db:"borrower_id"`
	StartDate  time.Time `db:"start_date"`
	EndDate    time.Time `db:"end_date"`
	Note       string    `db:"note"`
	Fee        int64     `db:"fee"`
	State      string    `db:"state"`
	Reason     string    `db:"reason"`
	ClosedBy   string    `db:"closed_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row requestRow) model() model.BorrowRequest {
	return model.BorrowRequest{
		ID:         row.ID,
		ItemID:     row.ItemID,
		OwnerID:    row.OwnerID,
		BorrowerID: row.BorrowerID,
		StartDate:  model.DayOf(row.StartDate),
		EndDate:    model.DayOf(row.EndDate),
		Note:       row.Note,
		Fee:        row.Fee,
		State:      model.RequestState(row.State),
		Reason:     row.Reason,
		ClosedBy:   row.ClosedBy,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func (r *repository) GetRequest(ctx context.Context, requestID string) (model.BorrowRequest, error) {
	return getRequest(ctx, r.db, requestID, false)
}

func (r *repository) ListRequestsByItem(ctx context.Context, itemID string, state model.RequestState) ([]model.BorrowRequest, error) {
	return listRequestsByItem(ctx, r.db, itemID, state)
}

func (r *repository) ListRequestsByBorrower(ctx context.Context, borrowerID string) ([]model.BorrowRequest, error) {
	return listRequests(ctx, r.db, qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"borrower_id": borrowerID}).
		OrderBy("created_at", "id"))
}

func (r *repository) ListStartingBy(ctx context.Context, day model.Date) ([]model.BorrowRequest, error) {
	return listRequests(ctx, r.db, qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"state": string(model.StateAccepted)}).
		Where(sq.LtOrEq{"start_date": day.Time}).
		OrderBy("start_date", "id"))
}

func (r *repository) ListEndingBefore(ctx context.Context, day model.Date) ([]model.BorrowRequest, error) {
	return listRequests(ctx, r.db, qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"state": string(model.StateActive)}).
		Where(sq.Lt{"end_date": day.Time}).
		OrderBy("end_date", "id"))
}

func getRequest(ctx context.Context, q querier, requestID string, forUpdate bool) (model.BorrowRequest, error) {
	b := qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"id": requestID})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	reqs, err := listRequests(ctx, q, b)
	if err != nil {
		return model.BorrowRequest{}, err
	}
	if len(reqs) == 0 {
		return model.BorrowRequest{}, errs.ErrNotFound
	}
	return reqs[0], nil
}

func listRequestsByItem(ctx context.Context, q querier, itemID string, state model.RequestState) ([]model.BorrowRequest, error) {
	b := qb.Select(requestColumns...).
		From(requestsTableName).
		Where(sq.Eq{"item_id": itemID})
	if state != "" {
		b = b.Where(sq.Eq{"state": string(state)})
	}
	return listRequests(ctx, q, b.OrderBy("created_at", "id"))
}

func listRequests(ctx context.Context, q querier, b sq.SelectBuilder) ([]model.BorrowRequest, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[requestRow])
	if err != nil {
		return nil, classify(err)
	}
	reqs := make([]model.BorrowRequest, 0, len(list))
	for _, row := range list {
		reqs = append(reqs, row.model())
	}
	return reqs, nil
}

// history

type historyRow struct {
	RequestID  string    `db:"request_id"`
	ItemID     string    `db:"item_id"`
	OwnerID    string    `db:"owner_id"`
	BorrowerID string    `db:"borrower_id"`
	ReturnDate time.Time `db:"return_date"`
	Rating     *int      `db:"rating"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row historyRow) model() model.LoanHistoryRecord {
	return model.LoanHistoryRecord{
		RequestID:  row.RequestID,
		ItemID:     row.ItemID,
		OwnerID:    row.OwnerID,
		BorrowerID: row.BorrowerID,
		ReturnDate: model.DayOf(row.ReturnDate),
		Rating:     row.Rating,
		Status:     model.HistoryStatus(row.Status),
		CreatedAt:  row.CreatedAt,
	}
}

func (r *repository) GetHistory(ctx context.Context, requestID string) (model.LoanHistoryRecord, error) {
	recs, err := r.listHistory(ctx, qb.Select(historyColumns...).
		From(historyTableName).
		Where(sq.Eq{"request_id": requestID}))
	if err != nil {
		return model.LoanHistoryRecord{}, err
	}
	if len(recs) == 0 {
		return model.LoanHistoryRecord{}, errs.ErrNotFound
	}
	return recs[0], nil
}

func (r *repository) ListHistoryByOwner(ctx context.Context, ownerID string) ([]model.LoanHistoryRecord, error) {
	return r.listHistory(ctx, qb.Select(historyColumns...).
		From(historyTableName).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("return_date DESC", "request_id"))
}

func (r *repository) listHistory(ctx context.Context, b sq.SelectBuilder) ([]model.LoanHistoryRecord, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[historyRow])
	if err != nil {
		return nil, classify(err)
	}
	recs := make([]model.LoanHistoryRecord, 0, len(list))
	for _, row := range list {
		recs = append(recs, row.model())
	}
	return recs, nil
}

// RatingSummary counts only rated completed loans; disputed ones never carry a score.
func (r *repository) RatingSummary(ctx context.Context, ownerID string) (model.RatingSummary, error) {
	query, args, err := qb.Select("count(rating) AS cnt", "coalesce(sum(rating), 0) AS total").
		From(historyTableName).
		Where(sq.Eq{"owner_id": ownerID, "status": string(model.HistoryCompleted)}).
		Where(sq.NotEq{"rating": nil}).
		ToSql()
	if err != nil {
		return model.RatingSummary{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.RatingSummary{}, classify(err)
	}
	sum, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.RatingSummary])
	if err != nil {
		return model.RatingSummary{}, classify(err)
	}
	return sum, nil
}

func (r *repository) SetRating(ctx context.Context, requestID string, rating int) (bool, error) {
	query := `UPDATE loan_history SET rating = @rating WHERE request_id = @request_id AND rating IS NULL`
	tag, err := r.db.Exec(ctx, query, pgx.NamedArgs{
		"rating":     rating,
		"request_id": requestID,
	})
	if err != nil {
		return false, classify(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	if _, err = r.GetHistory(ctx, requestID); err != nil {
		return false, err
	}
	return false, nil
}

// locations

type locationRow struct {
	ActorID   string    `db:"actor_id"`
	Latitude  *float64  `db:"latitude"`
	Longitude *float64  `db:"longitude"`
	Address   string    `db:"address"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row locationRow) model() model.Location {
	loc := model.Location{
		ActorID:   row.ActorID,
		Address:   row.Address,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Latitude != nil && row.Longitude != nil {
		loc.Coordinate = &model.Coordinate{Lat: *row.Latitude, Lon: *row.Longitude}
	}
	return loc
}

func (r *repository) GetLocation(ctx context.Context, actorID string) (model.Location, error) {
	locs, err := r.GetLocations(ctx, []string{actorID})
	if err != nil {
		return model.Location{}, err
	}
	loc, ok := locs[actorID]
	if !ok {
		return model.Location{}, errs.ErrNotFound
	}
	return loc, nil
}

func (r *repository) GetLocations(ctx context.Context, actorIDs []string) (map[string]model.Location, error) {
	out := make(map[string]model.Location, len(actorIDs))
	if len(actorIDs) == 0 {
		return out, nil
	}
	query, args, err := qb.Select(locationColumns...).
		From(locationTableName).
		Where(sq.Eq{"actor_id": actorIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[locationRow])
	if err != nil {
		return nil, classify(err)
	}
	for _, row := range list {
		out[row.ActorID] = row.model()
	}
	return out, nil
}

func (r *repository) UpsertLocation(ctx context.Context, loc model.Location) error {
	var lat, lon *float64
	if loc.Coordinate != nil {
		lat, lon = &loc.Coordinate.Lat, &loc.Coordinate.Lon
	}
	query := `INSERT INTO locations (actor_id, latitude, longitude, address, updated_at)
	VALUES (@actor_id, @latitude, @longitude, @address, @updated_at)
	ON CONFLICT (actor_id) DO UPDATE
	SET latitude = excluded.latitude, longitude = excluded.longitude,
	    address = excluded.address, updated_at = excluded.updated_at`
	_, err := r.db.Exec(ctx, query, pgx.NamedArgs{
		"actor_id":   loc.ActorID,
		"latitude":   lat,
		"longitude":  lon,
		"address":    loc.Address,
		"updated_at": loc.UpdatedAt,
	})
	return classify(err)
}

// tx is the transactional view handed to InTx callbacks.
type tx struct {
	q   querier
	log *zap.Logger
}

func (t *tx) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	return getItem(ctx, t.q, itemID)
}

func (t *tx) Availability(ctx context.Context, itemID string) (model.Availability, error) {
	item, err := getItem(ctx, t.q, itemID)
	if err != nil {
		return "", err
	}
	return item.Availability, nil
}

func (t *tx) CompareAndSwapAvailability(ctx context.Context, itemID string, expected, next model.Availability) (bool, error) {
	query := `UPDATE items SET availability = @next, updated_at = now()
	WHERE id = @id AND availability = @expected`
	tag, err := t.q.Exec(ctx, query, pgx.NamedArgs{
		"id":       itemID,
		"expected": string(expected),
		"next":     string(next),
	})
	if err != nil {
		return false, classify(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	if _, err = getItem(ctx, t.q, itemID); err != nil {
		return false, err
	}
	return false, nil
}

func (t *tx) GetRequest(ctx context.Context, requestID string) (model.BorrowRequest, error) {
	return getRequest(ctx, t.q, requestID, true)
}

func (t *tx) HasPendingRequest(ctx context.Context, itemID, borrowerID string) (bool, error) {
	query, args, err := qb.Select("1").
		From(requestsTableName).
		Where(sq.Eq{"item_id": itemID, "borrower_id": borrowerID, "state": string(model.StatePending)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}
	rows, err := t.q.Query(ctx, query, args...)
	if err != nil {
		return false, classify(err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return false, classify(err)
	}
	return len(found) > 0, nil
}

func (t *tx) InsertRequest(ctx context.Context, req model.BorrowRequest) error {
	query, args, err := qb.Insert(requestsTableName).
		Columns("id", "item_id", "owner_id", "borrower_id", "start_date", "end_date", "note",
			"fee", "state", "reason", "closed_by", "created_at", "updated_at").
		Values(req.ID, req.ItemID, req.OwnerID, req.BorrowerID, req.StartDate.Time, req.EndDate.Time, req.Note,
			req.Fee, string(req.State), req.Reason, req.ClosedBy, req.CreatedAt, req.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	t.log.Debug("InsertRequest", zap.String("query", query), zap.Any("args", args))
	if _, err = t.q.Exec(ctx, query, args...); err != nil {
		return classify(err)
	}
	return nil
}

func (t *tx) ListRequestsByItem(ctx context.Context, itemID string, state model.RequestState) ([]model.BorrowRequest, error) {
	return listRequestsByItem(ctx, t.q, itemID, state)
}

func (t *tx) UpdateRequestState(ctx context.Context, requestID string, tr model.Transition) (bool, error) {
	b := qb.Update(requestsTableName).
		Set("state", string(tr.To)).
		Set("updated_at", tr.At).
		Where(sq.Eq{"id": requestID, "state": string(tr.From)})
	if tr.Reason != "" {
		b = b.Set("reason", tr.Reason)
	}
	if tr.To.Terminal() {
		b = b.Set("closed_by", tr.ClosedBy)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return false, err
	}
	t.log.Debug("UpdateRequestState", zap.String("query", query), zap.Any("args", args))
	tag, err := t.q.Exec(ctx, query, args...)
	if err != nil {
		return false, classify(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	if _, err = getRequest(ctx, t.q, requestID, false); err != nil {
		return false, err
	}
	return false, nil
}

func (t *tx) InsertHistory(ctx context.Context, rec model.LoanHistoryRecord) error {
	query, args, err := qb.Insert(historyTableName).
		Columns(historyColumns...).
		Values(rec.RequestID, rec.ItemID, rec.OwnerID, rec.BorrowerID, rec.ReturnDate.Time,
			rec.Rating, string(rec.Status), rec.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = t.q.Exec(ctx, query, args...); err != nil {
		return classify(err)
	}
	return nil
}
