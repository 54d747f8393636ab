package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/apotekcare/apotek-backend/internal/modules/medicine"
	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// InTx runs fn inside one database transaction. The deferred rollback is a
// no-op after a successful commit, so every exit path ends the transaction.
func (r *postgresRepo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type postgresTx struct{ tx *sql.Tx }

func (t *postgresTx) MedicineForUpdate(ctx context.Context, id uuid.UUID) (*medicine.Medicine, error) {
	m := &medicine.Medicine{}
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, name, price, image, stock
		FROM medicines WHERE id=$1 FOR UPDATE`, id).
		Scan(&m.ID, &m.Name, &m.Price, &m.Image, &m.Stock)
	if err == sql.ErrNoRows {
		return nil, medicine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (t *postgresTx) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE medicines SET stock = stock + $1, updated_at = NOW() WHERE id=$2`,
		delta, id)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	return nil
}

func (t *postgresTx) CreateOrder(ctx context.Context, o *Order) error {
	var notes interface{}
	if o.Notes != "" {
		notes = o.Notes
	}
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders
		  (id, user_id, total_amount, status, shipping_address, payment_method, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.TotalAmount, o.Status, o.ShippingAddress, o.PaymentMethod, notes).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *postgresTx) CreateDetail(ctx context.Context, d *OrderDetail) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO order_details
		  (id, order_id, medicine_id, quantity, price, subtotal)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		d.ID, d.OrderID, d.MedicineID, d.Quantity, d.Price, d.Subtotal).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order_detail: %w", err)
	}
	return nil
}

func (t *postgresTx) DetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderDetail, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, order_id, medicine_id, quantity, price, subtotal, created_at, updated_at
		FROM order_details WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*OrderDetail
	for rows.Next() {
		d := &OrderDetail{}
		if err := rows.Scan(&d.ID, &d.OrderID, &d.MedicineID,
			&d.Quantity, &d.Price, &d.Subtotal, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (t *postgresTx) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to OrderStatus) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		to, orderID, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (t *postgresTx) DeleteDetailsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM order_details WHERE order_id=$1`, orderID)
	return err
}

func (t *postgresTx) DeleteOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ── reads outside the transaction ────────────────────────────────────────────

const orderColumns = `id, user_id, total_amount, status, shipping_address, payment_method, COALESCE(notes, ''), created_at, updated_at`

func scanOrder(scan func(...interface{}) error) (*Order, error) {
	o := &Order{}
	err := scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
		&o.ShippingAddress, &o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id string, withDetails bool) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, &NotFoundError{Resource: "order", ID: id}
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id=$1`, uid).Scan)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "order", ID: id}
	}
	if err != nil {
		return nil, err
	}
	if withDetails {
		o.Details, err = r.listDetails(ctx, o.ID)
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.user_id, o.total_amount, o.status, o.shipping_address,
		       o.payment_method, COALESCE(o.notes, ''), o.created_at, o.updated_at,
		       u.username, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o := &Order{User: &UserSummary{}}
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
			&o.ShippingAddress, &o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
			&o.User.Username, &o.User.Email); err != nil {
			return nil, err
		}
		o.User.ID = o.UserID
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachDetails(ctx, orders)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachDetails(ctx, orders)
}

func (r *postgresRepo) UpdateFields(ctx context.Context, o *Order) error {
	var notes interface{}
	if o.Notes != "" {
		notes = o.Notes
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET shipping_address=$1, payment_method=$2, notes=$3, status=$4, updated_at=$5
		WHERE id=$6`,
		o.ShippingAddress, o.PaymentMethod, notes, o.Status, time.Now(), o.ID)
	return err
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), orderID)
	return err
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) attachDetails(ctx context.Context, orders []*Order) ([]*Order, error) {
	for _, o := range orders {
		details, err := r.listDetails(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Details = details
	}
	return orders, nil
}

// listDetails returns an order's lines with the current medicine display
// fields joined in. The captured price lives on the detail row; the joined
// price is display-only.
func (r *postgresRepo) listDetails(ctx context.Context, orderID uuid.UUID) ([]*OrderDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.order_id, d.medicine_id, d.quantity, d.price, d.subtotal,
		       d.created_at, d.updated_at, m.name, m.price, m.image
		FROM order_details d
		JOIN medicines m ON m.id = d.medicine_id
		WHERE d.order_id=$1
		ORDER BY d.created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*OrderDetail
	for rows.Next() {
		d := &OrderDetail{Medicine: &MedicineSummary{}}
		if err := rows.Scan(&d.ID, &d.OrderID, &d.MedicineID,
			&d.Quantity, &d.Price, &d.Subtotal, &d.CreatedAt, &d.UpdatedAt,
			&d.Medicine.Name, &d.Medicine.Price, &d.Medicine.Image); err != nil {
			return nil, err
		}
		d.Medicine.ID = d.MedicineID
		details = append(details, d)
	}
	return details, rows.Err()
}
