package order

import (
	"context"

	"github.com/apotekcare/apotek-backend/internal/modules/medicine"
	"github.com/google/uuid"
)

// Tx is the set of operations available inside one order transaction. Every
// medicine read through MedicineForUpdate stays locked until the transaction
// commits or rolls back, so a stock check and the matching stock write are
// serialized against concurrent placements for the same medicine.
type Tx interface {
	// MedicineForUpdate reads a medicine row and holds a row lock on it.
	// Returns medicine.ErrNotFound when the id does not exist.
	MedicineForUpdate(ctx context.Context, id uuid.UUID) (*medicine.Medicine, error)

	// AdjustStock applies a signed delta to a medicine's stock.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error

	CreateOrder(ctx context.Context, o *Order) error
	CreateDetail(ctx context.Context, d *OrderDetail) error
	DetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderDetail, error)

	// TransitionStatus moves an order from one status to another and
	// reports whether the order was actually in the expected status. A
	// false return means a concurrent operation got there first.
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to OrderStatus) (bool, error)

	DeleteDetailsByOrder(ctx context.Context, orderID uuid.UUID) error

	// DeleteOrder removes the order row, reporting whether it still existed.
	DeleteOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// Repository defines data access for orders. InTx runs fn inside a single
// transaction: any error (or panic) rolls everything back, a nil return
// commits. The engines never touch a transaction handle directly.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetOrderByID(ctx context.Context, id string, withDetails bool) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// UpdateFields persists shipping address, payment method, notes and
	// status. It never touches stock.
	UpdateFields(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error
}
