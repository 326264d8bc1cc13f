// Package postgres is the production Repository backed by PostgreSQL via
// pgx. Multi-row invariants (deposit+entry pairs, report totals, status
// transitions) are enforced with transactions and guarded UPDATEs so
// concurrent writers cannot race past the domain rules.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, full_name, hashed_password, role, outlet_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, user.ID, user.Username, user.FullName, user.HashedPassword, user.Role, nullUUID(user.OutletID), user.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	var outletID pgtype.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, full_name, hashed_password, role, outlet_id, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.FullName, &u.HashedPassword, &u.Role, &outletID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	if outletID.Valid {
		u.OutletID = outletID.Bytes
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var u domain.User
	var outletID pgtype.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, full_name, hashed_password, role, outlet_id, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.FullName, &u.HashedPassword, &u.Role, &outletID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	if outletID.Valid {
		u.OutletID = outletID.Bytes
	}
	return u, nil
}

// --- Outlet reports ---

func (s *Store) CreateReport(ctx context.Context, report domain.OutletReport) (domain.OutletReport, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO outlet_reports (
			id, outlet_id, outlet_name, business_date, shift, status, total,
			note, proof_ref, created_by, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, report.ID, report.OutletID, report.OutletName, report.BusinessDate, report.Shift,
		report.Status, report.Total.String(), report.Note, report.ProofRef, report.CreatedBy, report.CreatedAt)
	if err != nil {
		return domain.OutletReport{}, err
	}
	return s.GetReport(ctx, report.ID)
}

func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (domain.OutletReport, error) {
	return getReport(ctx, s.pool, id)
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getReport(ctx context.Context, q queryer, id uuid.UUID) (domain.OutletReport, error) {
	var r domain.OutletReport
	var total pgtype.Numeric
	var submittedAt pgtype.Timestamptz
	err := q.QueryRow(ctx, `
		SELECT id, outlet_id, outlet_name, business_date, shift, status, total,
			note, proof_ref, created_by, created_at, submitted_at
		FROM outlet_reports
		WHERE id = $1
	`, id).Scan(&r.ID, &r.OutletID, &r.OutletName, &r.BusinessDate, &r.Shift, &r.Status,
		&total, &r.Note, &r.ProofRef, &r.CreatedBy, &r.CreatedAt, &submittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OutletReport{}, store.ErrNotFound
		}
		return domain.OutletReport{}, err
	}
	r.Total = numericToDecimal(total)
	if submittedAt.Valid {
		t := submittedAt.Time
		r.SubmittedAt = &t
	}

	items, err := listItems(ctx, q, id)
	if err != nil {
		return domain.OutletReport{}, err
	}
	r.Items = items
	return r, nil
}

func listItems(ctx context.Context, q queryer, reportID uuid.UUID) ([]domain.SalesLineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, category, quantity, unit_price, total
		FROM sales_line_items
		WHERE report_id = $1
		ORDER BY created_at ASC
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.SalesLineItem, 0, 8)
	for rows.Next() {
		var it domain.SalesLineItem
		var unitPrice, total pgtype.Numeric
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.Quantity, &unitPrice, &total); err != nil {
			return nil, err
		}
		it.UnitPrice = numericToDecimal(unitPrice)
		it.Total = numericToDecimal(total)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListReports(ctx context.Context, f store.ReportFilter) ([]domain.OutletReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id
		FROM outlet_reports
		WHERE ($1::uuid IS NULL OR outlet_id = $1)
			AND ($2 = '' OR status = $2)
			AND ($3::timestamptz IS NULL OR business_date >= $3)
			AND ($4::timestamptz IS NULL OR business_date < $4)
		ORDER BY created_at DESC
	`, nullUUID(f.OutletID), f.Status, nullTime(f.From), nullTime(f.To))
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, 32)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reports := make([]domain.OutletReport, 0, len(ids))
	for _, id := range ids {
		r, err := getReport(ctx, s.pool, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *Store) AddLineItem(ctx context.Context, reportID uuid.UUID, item domain.SalesLineItem) (domain.OutletReport, error) {
	return s.mutateItems(ctx, reportID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sales_line_items (id, report_id, name, category, quantity, unit_price, total, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		`, item.ID, reportID, item.Name, item.Category, item.Quantity, item.UnitPrice.String(), item.Total.String())
		return err
	})
}

func (s *Store) UpdateLineItem(ctx context.Context, reportID uuid.UUID, item domain.SalesLineItem) (domain.OutletReport, error) {
	return s.mutateItems(ctx, reportID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE sales_line_items
			SET name = $3, category = $4, quantity = $5, unit_price = $6, total = $7
			WHERE id = $1 AND report_id = $2
		`, item.ID, reportID, item.Name, item.Category, item.Quantity, item.UnitPrice.String(), item.Total.String())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *Store) RemoveLineItem(ctx context.Context, reportID, itemID uuid.UUID) (domain.OutletReport, error) {
	return s.mutateItems(ctx, reportID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM sales_line_items
			WHERE id = $1 AND report_id = $2
		`, itemID, reportID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// mutateItems runs one line-item write and the report total recompute in a
// single transaction. The report row is locked first so the draft check and
// the total stay consistent.
func (s *Store) mutateItems(ctx context.Context, reportID uuid.UUID, write func(tx pgx.Tx) error) (domain.OutletReport, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.OutletReport{}, err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `
		SELECT status FROM outlet_reports WHERE id = $1 FOR UPDATE
	`, reportID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OutletReport{}, store.ErrNotFound
		}
		return domain.OutletReport{}, err
	}
	if status != enum.ReportStatusDraft {
		return domain.OutletReport{}, store.ErrStale
	}

	if err := write(tx); err != nil {
		return domain.OutletReport{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE outlet_reports
		SET total = (
			SELECT COALESCE(SUM(total), 0) FROM sales_line_items WHERE report_id = $1
		)
		WHERE id = $1
	`, reportID)
	if err != nil {
		return domain.OutletReport{}, err
	}

	report, err := getReport(ctx, tx, reportID)
	if err != nil {
		return domain.OutletReport{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.OutletReport{}, err
	}
	return report, nil
}

func (s *Store) SubmitReport(ctx context.Context, id uuid.UUID, at time.Time) (domain.OutletReport, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE outlet_reports
		SET status = $2, submitted_at = $3
		WHERE id = $1 AND status = $4
		  AND EXISTS (SELECT 1 FROM sales_line_items WHERE report_id = $1)
	`, id, enum.ReportStatusSubmitted, at, enum.ReportStatusDraft)
	if err != nil {
		return domain.OutletReport{}, err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing report, a lost race, and an emptied draft.
		report, err := s.GetReport(ctx, id)
		if err != nil {
			return domain.OutletReport{}, err
		}
		if report.Status != enum.ReportStatusDraft {
			return domain.OutletReport{}, store.ErrStale
		}
		return domain.OutletReport{}, store.ErrEmpty
	}
	return s.GetReport(ctx, id)
}

// --- Custody ---

func (s *Store) CreateDeposit(ctx context.Context, dep domain.CashDeposit, entry domain.CashflowEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	// UNIQUE(report_id) makes the one-pull-per-report guard a constraint,
	// not a read-then-write. A duplicate rolls back the entry insert too.
	_, err = tx.Exec(ctx, `
		INSERT INTO cash_deposits (id, report_id, outlet_name, amount, proof_ref, entry_id, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, dep.ID, dep.ReportID, dep.OutletName, dep.Amount.String(), dep.ProofRef, dep.EntryID, dep.CreatedBy, dep.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetDeposit(ctx context.Context, id uuid.UUID) (domain.CashDeposit, error) {
	var d domain.CashDeposit
	var amount pgtype.Numeric
	err := s.pool.QueryRow(ctx, `
		SELECT id, report_id, outlet_name, amount, proof_ref, entry_id, created_by, created_at
		FROM cash_deposits
		WHERE id = $1
	`, id).Scan(&d.ID, &d.ReportID, &d.OutletName, &amount, &d.ProofRef, &d.EntryID, &d.CreatedBy, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CashDeposit{}, store.ErrNotFound
		}
		return domain.CashDeposit{}, err
	}
	d.Amount = numericToDecimal(amount)
	return d, nil
}

func (s *Store) ListDeposits(ctx context.Context, from, to time.Time) ([]domain.CashDeposit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, report_id, outlet_name, amount, proof_ref, entry_id, created_by, created_at
		FROM cash_deposits
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
			AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at ASC
	`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deposits := make([]domain.CashDeposit, 0, 32)
	for rows.Next() {
		var d domain.CashDeposit
		var amount pgtype.Numeric
		if err := rows.Scan(&d.ID, &d.ReportID, &d.OutletName, &amount, &d.ProofRef, &d.EntryID, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Amount = numericToDecimal(amount)
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deposits, nil
}

func (s *Store) UpdateDeposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, proofRef string) (domain.CashDeposit, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.CashDeposit{}, err
	}
	defer tx.Rollback(ctx)

	var entryID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT entry_id FROM cash_deposits WHERE id = $1 FOR UPDATE
	`, id).Scan(&entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CashDeposit{}, store.ErrNotFound
		}
		return domain.CashDeposit{}, err
	}

	// Editable only while the linked entry is still awaiting verification.
	tag, err := tx.Exec(ctx, `
		UPDATE cashflow_entries
		SET amount = $2, proof_ref = CASE WHEN $3 = '' THEN proof_ref ELSE $3 END
		WHERE id = $1 AND status = $4
	`, entryID, amount.String(), proofRef, enum.EntryStatusPending)
	if err != nil {
		return domain.CashDeposit{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.CashDeposit{}, store.ErrStale
	}

	_, err = tx.Exec(ctx, `
		UPDATE cash_deposits
		SET amount = $2, proof_ref = CASE WHEN $3 = '' THEN proof_ref ELSE $3 END
		WHERE id = $1
	`, id, amount.String(), proofRef)
	if err != nil {
		return domain.CashDeposit{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.CashDeposit{}, err
	}
	return s.GetDeposit(ctx, id)
}

// --- Expenses ---

func (s *Store) CreateExpense(ctx context.Context, exp domain.ExpenseEntry, entry domain.CashflowEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO expense_entries (id, category, description, amount, proof_ref, entry_id, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, exp.ID, exp.Category, exp.Description, exp.Amount.String(), exp.ProofRef, exp.EntryID, exp.CreatedBy, exp.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListExpenses(ctx context.Context, from, to time.Time) ([]domain.ExpenseEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, description, amount, proof_ref, entry_id, created_by, created_at
		FROM expense_entries
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
			AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at ASC
	`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.ExpenseEntry, 0, 32)
	for rows.Next() {
		var x domain.ExpenseEntry
		var amount pgtype.Numeric
		if err := rows.Scan(&x.ID, &x.Category, &x.Description, &amount, &x.ProofRef, &x.EntryID, &x.CreatedBy, &x.CreatedAt); err != nil {
			return nil, err
		}
		x.Amount = numericToDecimal(amount)
		expenses = append(expenses, x)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var entryID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT entry_id FROM expense_entries WHERE id = $1 FOR UPDATE
	`, id).Scan(&entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM cashflow_entries WHERE id = $1 AND status = $2
	`, entryID, enum.EntryStatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrStale
	}

	_, err = tx.Exec(ctx, `DELETE FROM expense_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --- Cashflow entries ---

func insertEntry(ctx context.Context, tx pgx.Tx, e domain.CashflowEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO cashflow_entries (
			id, occurred_at, source, direction, category, description, amount,
			status, proof_ref, report_id, source_id, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, e.ID, e.OccurredAt, e.Source, e.Direction, e.Category, e.Description, e.Amount.String(),
		e.Status, e.ProofRef, nullUUID(e.ReportID), nullUUID(e.SourceID), e.CreatedAt)
	return err
}

const entryColumns = `
	id, occurred_at, source, direction, category, description, amount,
	status, proof_ref, report_id, source_id, verified_by, verified_at,
	reject_reason, created_at
`

func scanEntry(row pgx.Row) (domain.CashflowEntry, error) {
	var e domain.CashflowEntry
	var amount pgtype.Numeric
	var reportID, sourceID pgtype.UUID
	var verifiedBy, rejectReason pgtype.Text
	var verifiedAt pgtype.Timestamptz
	err := row.Scan(&e.ID, &e.OccurredAt, &e.Source, &e.Direction, &e.Category, &e.Description,
		&amount, &e.Status, &e.ProofRef, &reportID, &sourceID, &verifiedBy, &verifiedAt,
		&rejectReason, &e.CreatedAt)
	if err != nil {
		return domain.CashflowEntry{}, err
	}
	e.Amount = numericToDecimal(amount)
	if reportID.Valid {
		e.ReportID = reportID.Bytes
	}
	if sourceID.Valid {
		e.SourceID = sourceID.Bytes
	}
	if verifiedBy.Valid {
		e.VerifiedBy = verifiedBy.String
	}
	if rejectReason.Valid {
		e.RejectReason = rejectReason.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		e.VerifiedAt = &t
	}
	return e, nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (domain.CashflowEntry, error) {
	e, err := scanEntry(s.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM cashflow_entries
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CashflowEntry{}, store.ErrNotFound
		}
		return domain.CashflowEntry{}, err
	}
	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, f store.EntryFilter) ([]domain.CashflowEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM cashflow_entries
		WHERE ($1 = '' OR status = $1)
			AND ($2 = '' OR direction = $2)
			AND ($3::timestamptz IS NULL OR occurred_at >= $3)
			AND ($4::timestamptz IS NULL OR occurred_at < $4)
		ORDER BY occurred_at ASC
	`, f.Status, f.Direction, nullTime(f.From), nullTime(f.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.CashflowEntry, 0, 64)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) FinalizeEntry(ctx context.Context, id uuid.UUID, status, verifiedBy, reason string, at time.Time) (domain.CashflowEntry, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE cashflow_entries
		SET status = $2, verified_by = $3, reject_reason = $4, verified_at = $5
		WHERE id = $1 AND status = $6
	`, id, status, verifiedBy, reason, at, enum.EntryStatusPending)
	if err != nil {
		return domain.CashflowEntry{}, err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetEntry(ctx, id); err != nil {
			return domain.CashflowEntry{}, err
		}
		return domain.CashflowEntry{}, store.ErrStale
	}
	return s.GetEntry(ctx, id)
}

// --- Activity ---

func (s *Store) AppendActivity(ctx context.Context, ev domain.ActivityEvent) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO activity_events (id, created_at, actor_name, actor_role, type, action, entity_id, detail)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, ev.ID, ev.Timestamp, ev.ActorName, ev.ActorRole, ev.Type, ev.Action, nullUUID(ev.EntityID), ev.Detail)
	return err
}

func (s *Store) ListActivity(ctx context.Context, f store.ActivityFilter) ([]domain.ActivityEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, actor_name, actor_role, type, action, entity_id, detail
		FROM activity_events
		WHERE ($1 = '' OR actor_role = $1)
			AND ($2 = '' OR type = $2)
			AND ($3::timestamptz IS NULL OR created_at >= $3)
			AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at ASC
	`, f.Role, f.Type, nullTime(f.From), nullTime(f.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.ActivityEvent, 0, 64)
	for rows.Next() {
		var ev domain.ActivityEvent
		var entityID pgtype.UUID
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.ActorName, &ev.ActorRole, &ev.Type, &ev.Action, &entityID, &ev.Detail); err != nil {
			return nil, err
		}
		if entityID.Valid {
			ev.EntityID = entityID.Bytes
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
