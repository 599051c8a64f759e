package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no matching invoice row exists.
var ErrNotFound = errors.New("invoice not found")

const invoiceColumns = `id, invoice_number, patient_id, status, tax_bps, subtotal_cents,
	tax_cents, total_cents, amount_paid_cents, notes, void_reason, issued_at, paid_at,
	created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*InvoiceResponse, error) {
	var i InvoiceResponse
	var notes, voidReason sql.NullString
	var issuedAt, paidAt, updatedAt sql.NullTime

	err := row.Scan(
		&i.ID, &i.InvoiceNumber, &i.PatientID, &i.Status, &i.TaxBps, &i.SubtotalCents,
		&i.TaxCents, &i.TotalCents, &i.AmountPaidCents, &notes, &voidReason, &issuedAt, &paidAt,
		&i.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	i.Notes = notes.String
	i.VoidReason = voidReason.String
	if issuedAt.Valid {
		i.IssuedAt = &issuedAt.Time
	}
	if paidAt.Valid {
		i.PaidAt = &paidAt.Time
	}
	if updatedAt.Valid {
		i.UpdatedAt = &updatedAt.Time
	}
	return &i, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// newInvoiceNumber generates a number of the form INV-XXXXXXXX.
func newInvoiceNumber() string {
	id := uuid.New().String()
	return "INV-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

func (r *Repository) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	query := fmt.Sprintf(`
		INSERT INTO invoices
		(id, invoice_number, patient_id, status, tax_bps, subtotal_cents, tax_cents, total_cents,
		 amount_paid_cents, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, 0, 0, $6, $7)
		RETURNING %s
	`, invoiceColumns)

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		newInvoiceNumber(),
		req.PatientID,
		StatusDraft,
		req.TaxBps,
		nullable(req.Notes),
		time.Now(),
	)

	i, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}
	return i, nil
}

// GetInvoice returns the invoice with its line items and payments.
func (r *Repository) GetInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1`, invoiceColumns)

	i, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}

	if err = r.attachDetails(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// attachDetails loads the line item and payment arrays onto the
// invoice so mutation responses carry the same shape as reads.
func (r *Repository) attachDetails(ctx context.Context, i *InvoiceResponse) error {
	var err error
	if i.LineItems, err = r.getLineItems(ctx, i.ID); err != nil {
		return err
	}
	if i.Payments, err = r.getPayments(ctx, i.ID); err != nil {
		return err
	}
	return nil
}

func (r *Repository) getLineItems(ctx context.Context, invoiceID string) ([]LineItemResponse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, service_code, quantity, unit_price_cents, amount_cents
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY created_at
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []LineItemResponse
	for rows.Next() {
		var item LineItemResponse
		var serviceCode sql.NullString
		if err := rows.Scan(&item.ID, &item.Description, &serviceCode, &item.Quantity, &item.UnitPriceCents, &item.AmountCents); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		item.ServiceCode = serviceCode.String
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}
	return items, nil
}

func (r *Repository) getPayments(ctx context.Context, invoiceID string) ([]PaymentResponse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, method, reference, received_at
		FROM invoice_payments
		WHERE invoice_id = $1
		ORDER BY received_at
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []PaymentResponse
	for rows.Next() {
		var p PaymentResponse
		var reference sql.NullString
		if err := rows.Scan(&p.ID, &p.AmountCents, &p.Method, &reference, &p.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Reference = reference.String
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

func (r *Repository) ListInvoices(ctx context.Context, filter ListFilter, limit, offset int) ([]InvoiceResponse, int, error) {
	where := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.PatientID != "" {
		where += fmt.Sprintf(" AND patient_id = $%d", argIndex)
		args = append(args, filter.PatientID)
		argIndex++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM invoices WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, invoiceColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []InvoiceResponse
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *i)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, total, nil
}

// recomputeTotals recalculates subtotal, tax and total from the line
// items inside the caller's transaction.
func (r *Repository) recomputeTotals(ctx context.Context, tx *sql.Tx, invoiceID string) (*InvoiceResponse, error) {
	query := fmt.Sprintf(`
		UPDATE invoices
		SET subtotal_cents = agg.subtotal,
		    tax_cents = agg.subtotal * tax_bps / 10000,
		    total_cents = agg.subtotal + agg.subtotal * tax_bps / 10000,
		    updated_at = $2
		FROM (
			SELECT COALESCE(SUM(amount_cents), 0) AS subtotal
			FROM invoice_line_items
			WHERE invoice_id = $1
		) agg
		WHERE id = $1
		RETURNING %s
	`, invoiceColumns)

	i, err := scanInvoice(tx.QueryRowContext(ctx, query, invoiceID, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to recompute invoice totals: %w", err)
	}
	return i, nil
}

// AddLineItem inserts the line and recomputes the totals in one
// transaction. The caller must have checked the invoice is a draft.
func (r *Repository) AddLineItem(ctx context.Context, invoiceID string, req AddLineItemRequest) (*InvoiceResponse, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	amount := int64(req.Quantity) * req.UnitPriceCents
	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoice_line_items
		(id, invoice_id, description, service_code, quantity, unit_price_cents, amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.New(), invoiceID, req.Description, nullable(req.ServiceCode), req.Quantity, req.UnitPriceCents, amount, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to insert line item: %w", err)
	}

	i, err := r.recomputeTotals(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit line item: %w", err)
	}

	if err = r.attachDetails(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// RemoveLineItem deletes the line and recomputes the totals.
func (r *Repository) RemoveLineItem(ctx context.Context, invoiceID, itemID string) (*InvoiceResponse, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		DELETE FROM invoice_line_items WHERE id = $1 AND invoice_id = $2
	`, itemID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete line item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	i, err := r.recomputeTotals(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit line item removal: %w", err)
	}

	if err = r.attachDetails(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (r *Repository) IssueInvoice(ctx context.Context, id string) (*InvoiceResponse, error) {
	query := fmt.Sprintf(`
		UPDATE invoices
		SET status = $1, issued_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING %s
	`, invoiceColumns)

	i, err := scanInvoice(r.db.QueryRowContext(ctx, query, StatusIssued, time.Now(), id, StatusDraft))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to issue invoice: %w", err)
	}

	if err = r.attachDetails(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// RecordPayment stores the payment row and moves the invoice to
// partially_paid or paid depending on the running total, all in one
// transaction.
func (r *Repository) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*InvoiceResponse, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoice_payments
		(id, invoice_id, amount_cents, method, reference, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), id, req.AmountCents, req.Method, nullable(req.Reference), now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE invoices
		SET amount_paid_cents = amount_paid_cents + $1,
		    status = CASE WHEN amount_paid_cents + $1 >= total_cents THEN '%s' ELSE '%s' END,
		    paid_at = CASE WHEN amount_paid_cents + $1 >= total_cents THEN $2 ELSE paid_at END,
		    updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, StatusPaid, StatusPartiallyPaid, invoiceColumns)

	i, err := scanInvoice(tx.QueryRowContext(ctx, query, req.AmountCents, now, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply payment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	if err = r.attachDetails(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (r *Repository) VoidInvoice(ctx context.Context, id, reason string) (*InvoiceResponse, error) {
	query := fmt.Sprintf(`
		UPDATE invoices
		SET status = $1, void_reason = $2, updated_at = $3
		WHERE id = $4
		RETURNING %s
	`, invoiceColumns)

	i, err := scanInvoice(r.db.QueryRowContext(ctx, query, StatusVoid, reason, time.Now(), id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to void invoice: %w", err)
	}

	if err = r.attachDetails(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}
