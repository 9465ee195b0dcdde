// Package sqlite provides the SQLite-backed implementation of ports.Store.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa: the webhook path writes while the status endpoint may be reading
// the same payment row.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/domain"
	"github.com/wiper09/UTS20251-ITFinTech-HabilDwiAtmika/internal/ports"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite avoids CGO, which keeps Docker (Alpine) builds simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
//
// orders.items holds the JSON-serialised line-item snapshot: items belong to
// exactly one order and are never queried on their own, so a child table
// would only add join noise.
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    name        TEXT    NOT NULL,
    description TEXT    NOT NULL DEFAULT '',
    price       INTEGER NOT NULL,
    image       TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders (
    -- Externally-visible reference generated at checkout (order-<ms>-<suffix>).
    reference     TEXT PRIMARY KEY,
    payer_email   TEXT    NOT NULL,

    -- JSON array of line-item snapshots, frozen at checkout time.
    items         TEXT    NOT NULL,

    subtotal      INTEGER NOT NULL,
    shipping_cost INTEGER NOT NULL,
    total         INTEGER NOT NULL,

    status        TEXT    NOT NULL,

    -- RFC3339 stored as TEXT, SQLite idiom.
    created_at    TEXT    NOT NULL,
    updated_at    TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
    -- Provider-issued invoice ID: the webhook lookup key.
    -- PRIMARY KEY enforces at most one payment per provider invoice.
    invoice_id      TEXT PRIMARY KEY,

    order_reference TEXT    NOT NULL REFERENCES orders(reference),
    amount          INTEGER NOT NULL,
    status          TEXT    NOT NULL,
    payment_method  TEXT    NOT NULL DEFAULT '',

    -- NULL unless status is SUCCESS.
    paid_at         TEXT,

    created_at      TEXT    NOT NULL,
    updated_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_order_reference ON payments(order_reference);
`

// seed gives the storefront a usable catalog on first boot. INSERT OR IGNORE
// keeps restarts idempotent and leaves operator edits alone.
const seed = `
INSERT OR IGNORE INTO products (id, name, description, price, image) VALUES
    ('prod_1', 'Kopi Arabika Gayo 250g', 'Single-origin arabica beans from Aceh', 85000,  '/images/kopi-gayo.jpg'),
    ('prod_2', 'Teh Melati Premium 100g', 'Jasmine-scented green tea',            55000,  '/images/teh-melati.jpg'),
    ('prod_3', 'Madu Hutan 500ml',        'Raw forest honey',                     120000, '/images/madu-hutan.jpg');
`

// Repository is the SQLite implementation of ports.Store.
type Repository struct {
	db *sql.DB
}

var _ ports.Store = (*Repository)(nil)

// Open opens (or creates) the SQLite database at the given path, applies the
// schema and seeds the catalog.
//
//	repo, err := sqlite.Open("./data/storefront.db")
func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir %q: %w", dir, err)
		}
	}

	// The pure-Go driver takes _pragma query parameters. WAL enables
	// concurrent readers; busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection; funnelling the
	// pool through one connection also makes the conditional updates below
	// strictly serialised.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateCheckout inserts the order snapshot and its pending payment in a
// single transaction, so a crash between the two writes cannot leave an order
// without its payment row.
func (r *Repository) CreateCheckout(ctx context.Context, order *domain.Order, payment *domain.Payment) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("sqlite: marshal items for %q: %w", order.Reference, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin checkout tx: %w", err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback() }()

	const insertOrder = `
		INSERT INTO orders
			(reference, payer_email, items, subtotal, shipping_cost, total, status, created_at, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, insertOrder,
		order.Reference,
		order.PayerEmail,
		string(items),
		order.Subtotal,
		order.ShippingCost,
		order.Total,
		string(order.Status),
		formatTime(order.CreatedAt),
		formatTime(order.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order %q: %w", order.Reference, err)
	}

	const insertPayment = `
		INSERT INTO payments
			(invoice_id, order_reference, amount, status, payment_method, paid_at, created_at, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, insertPayment,
		payment.InvoiceID,
		payment.OrderReference,
		payment.Amount,
		string(payment.Status),
		payment.PaymentMethod,
		nullableTime(payment.PaidAt),
		formatTime(payment.CreatedAt),
		formatTime(payment.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert payment %q: %w", payment.InvoiceID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit checkout for %q: %w", order.Reference, err)
	}
	return nil
}

// PaymentByInvoiceID looks a payment up by the provider invoice ID.
func (r *Repository) PaymentByInvoiceID(ctx context.Context, invoiceID string) (*domain.Payment, error) {
	const q = `
		SELECT invoice_id, order_reference, amount, status, payment_method, paid_at, created_at, updated_at
		FROM   payments
		WHERE  invoice_id = ?`

	row := r.db.QueryRowContext(ctx, q, invoiceID)

	var (
		p         domain.Payment
		status    string
		paidAt    sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(&p.InvoiceID, &p.OrderReference, &p.Amount, &status, &p.PaymentMethod, &paidAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: payment %q: %w", invoiceID, err)
	}

	p.Status = domain.PaymentStatus(status)
	if p.PaidAt, err = parseNullableTime(paidAt); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// SettlePayment is the atomic conditional update at the heart of the webhook
// flow: SUCCESS is written only when the row is not already SUCCESS, so a
// redelivered "paid" event, even one racing a concurrent duplicate, settles
// the payment exactly once and stamps exactly one paid_at.
func (r *Repository) SettlePayment(ctx context.Context, invoiceID, method string, paidAt time.Time) (bool, error) {
	const q = `
		UPDATE payments
		SET    status         = ?,
		       paid_at        = ?,
		       payment_method = CASE WHEN ? <> '' THEN ? ELSE payment_method END,
		       updated_at     = ?
		WHERE  invoice_id = ? AND status <> ?`

	now := formatTime(time.Now().UTC())
	res, err := r.db.ExecContext(ctx, q,
		string(domain.PaymentSuccess),
		formatTime(paidAt.UTC()),
		method, method,
		now,
		invoiceID,
		string(domain.PaymentSuccess),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: settle payment %q: %w", invoiceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: settle payment %q: rows affected: %w", invoiceID, err)
	}
	return n > 0, nil
}

// ClosePayment moves a PENDING payment to EXPIRED or FAILED. The PENDING guard
// makes the update a no-op against settled payments, preserving the
// no-regression invariant, and keeps paid_at NULL on closed rows.
func (r *Repository) ClosePayment(ctx context.Context, invoiceID string, status domain.PaymentStatus) (bool, error) {
	const q = `
		UPDATE payments
		SET    status = ?, updated_at = ?
		WHERE  invoice_id = ? AND status = ?`

	res, err := r.db.ExecContext(ctx, q,
		string(status),
		formatTime(time.Now().UTC()),
		invoiceID,
		string(domain.PaymentPending),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: close payment %q: %w", invoiceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: close payment %q: rows affected: %w", invoiceID, err)
	}
	return n > 0, nil
}

// SetOrderStatus propagates a payment transition to the order row. Callers
// treat failures as non-fatal: the payment row is authoritative.
func (r *Repository) SetOrderStatus(ctx context.Context, reference string, status domain.OrderStatus) error {
	const q = `UPDATE orders SET status = ?, updated_at = ? WHERE reference = ?`

	_, err := r.db.ExecContext(ctx, q, string(status), formatTime(time.Now().UTC()), reference)
	if err != nil {
		return fmt.Errorf("sqlite: set order %q status: %w", reference, err)
	}
	return nil
}

// StatusByReference resolves the payment status for an order reference.
// The payment row is read, not the order row, because only the payment is
// authoritative and the order propagation is eventually consistent.
func (r *Repository) StatusByReference(ctx context.Context, reference string) (domain.PaymentStatus, error) {
	const q = `
		SELECT p.status
		FROM   payments p
		WHERE  p.order_reference = ?
		LIMIT  1`

	var status string
	err := r.db.QueryRowContext(ctx, q, reference).Scan(&status)
	if err == sql.ErrNoRows {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: status for %q: %w", reference, err)
	}
	return domain.PaymentStatus(status), nil
}

// ListProducts returns the catalog ordered by name.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const q = `SELECT id, name, description, price, image FROM products ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image); err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	return out, nil
}

// applySchema runs the DDL and seed statements. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	if _, err := db.Exec(seed); err != nil {
		return fmt.Errorf("sqlite: seed catalog: %w", err)
	}
	return nil
}
