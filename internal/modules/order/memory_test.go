package order

import (
	"context"
	"errors"
	"sync"

	"github.com/apotekcare/apotek-backend/internal/modules/medicine"
	"github.com/google/uuid"
)

// memStore is an in-memory Repository whose transactions are a mutex plus a
// state snapshot: fn runs with the lock held, and any error restores the
// snapshot. This gives the tests real all-or-nothing semantics and serializes
// concurrent engine calls the way row locks do in postgres.
type memStore struct {
	mu        sync.Mutex
	medicines map[uuid.UUID]*medicine.Medicine
	orders    map[uuid.UUID]*Order
	details   map[uuid.UUID][]*OrderDetail

	// failOn makes the named Tx operation fail once, to exercise rollback.
	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		medicines: make(map[uuid.UUID]*medicine.Medicine),
		orders:    make(map[uuid.UUID]*Order),
		details:   make(map[uuid.UUID][]*OrderDetail),
	}
}

func (s *memStore) addMedicine(name string, price string, stock int) *medicine.Medicine {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := &medicine.Medicine{
		ID:    uuid.New(),
		Name:  name,
		Price: mustDecimal(price),
		Stock: stock,
	}
	s.medicines[m.ID] = m
	return m
}

func (s *memStore) medicineStock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.medicines[id].Stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) detailCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.details {
		n += len(d)
	}
	return n
}

func (s *memStore) snapshot() (map[uuid.UUID]*medicine.Medicine, map[uuid.UUID]*Order, map[uuid.UUID][]*OrderDetail) {
	medicines := make(map[uuid.UUID]*medicine.Medicine, len(s.medicines))
	for id, m := range s.medicines {
		copied := *m
		medicines[id] = &copied
	}
	orders := make(map[uuid.UUID]*Order, len(s.orders))
	for id, o := range s.orders {
		copied := *o
		orders[id] = &copied
	}
	details := make(map[uuid.UUID][]*OrderDetail, len(s.details))
	for id, list := range s.details {
		copiedList := make([]*OrderDetail, len(list))
		for i, d := range list {
			copied := *d
			copiedList[i] = &copied
		}
		details[id] = copiedList
	}
	return medicines, orders, details
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines, orders, details := s.snapshot()
	if err := fn(&memTx{store: s}); err != nil {
		s.medicines, s.orders, s.details = medicines, orders, details
		return err
	}
	return nil
}

type memTx struct{ store *memStore }

func (t *memTx) fail(op string) bool {
	if t.store.failOn == op {
		t.store.failOn = ""
		return true
	}
	return false
}

func (t *memTx) MedicineForUpdate(ctx context.Context, id uuid.UUID) (*medicine.Medicine, error) {
	m, ok := t.store.medicines[id]
	if !ok {
		return nil, medicine.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (t *memTx) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	if t.fail("AdjustStock") {
		return errors.New("injected stock failure")
	}
	m, ok := t.store.medicines[id]
	if !ok {
		return medicine.ErrNotFound
	}
	m.Stock += delta
	return nil
}

func (t *memTx) CreateOrder(ctx context.Context, o *Order) error {
	if t.fail("CreateOrder") {
		return errors.New("injected order failure")
	}
	copied := *o
	t.store.orders[o.ID] = &copied
	return nil
}

func (t *memTx) CreateDetail(ctx context.Context, d *OrderDetail) error {
	if t.fail("CreateDetail") {
		return errors.New("injected detail failure")
	}
	copied := *d
	t.store.details[d.OrderID] = append(t.store.details[d.OrderID], &copied)
	return nil
}

func (t *memTx) DetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderDetail, error) {
	list := t.store.details[orderID]
	out := make([]*OrderDetail, len(list))
	for i, d := range list {
		copied := *d
		out[i] = &copied
	}
	return out, nil
}

func (t *memTx) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to OrderStatus) (bool, error) {
	o, ok := t.store.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (t *memTx) DeleteDetailsByOrder(ctx context.Context, orderID uuid.UUID) error {
	delete(t.store.details, orderID)
	return nil
}

func (t *memTx) DeleteOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	if _, ok := t.store.orders[orderID]; !ok {
		return false, nil
	}
	delete(t.store.orders, orderID)
	return true, nil
}

// ── reads outside the transaction ────────────────────────────────────────────

func (s *memStore) GetOrderByID(ctx context.Context, id string, withDetails bool) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, &NotFoundError{Resource: "order", ID: id}
	}
	o, ok := s.orders[uid]
	if !ok {
		return nil, &NotFoundError{Resource: "order", ID: id}
	}
	copied := *o
	if withDetails {
		for _, d := range s.details[uid] {
			dc := *d
			copied.Details = append(copied.Details, &dc)
		}
	}
	return &copied, nil
}

func (s *memStore) ListAll(ctx context.Context) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Order
	for _, o := range s.orders {
		copied := *o
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Order
	for _, o := range s.orders {
		if o.UserID == userID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memStore) UpdateFields(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[o.ID]
	if !ok {
		return &NotFoundError{Resource: "order", ID: o.ID.String()}
	}
	stored.ShippingAddress = o.ShippingAddress
	stored.PaymentMethod = o.PaymentMethod
	stored.Notes = o.Notes
	stored.Status = o.Status
	return nil
}

func (s *memStore) UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[orderID]
	if !ok {
		return &NotFoundError{Resource: "order", ID: orderID.String()}
	}
	stored.Status = status
	return nil
}

var _ Repository = (*memStore)(nil)
