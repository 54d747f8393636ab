package order

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/apotekcare/apotek-backend/internal/modules/medicine"
	"github.com/apotekcare/apotek-backend/internal/modules/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the order management business logic.
type Service interface {
	// PlaceOrder validates the requested items against live stock, captures
	// prices, and persists the order with its details atomically.
	PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*Order, error)

	// GetOrder returns an order to its owner or to an admin.
	GetOrder(ctx context.Context, callerID uuid.UUID, role user.Role, id string) (*Order, error)

	// ListAllOrders returns every order, newest first. Admin only.
	ListAllOrders(ctx context.Context) ([]*Order, error)

	// ListUserOrders returns the caller's own orders, newest first.
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// UpdateStatus sets an order's status directly. It performs no
	// inventory adjustment, even for a transition into cancelled; only
	// CancelOrder and DeleteOrder restore stock. Admin only.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)

	// UpdateOrder edits shipping/payment/notes. Owners may edit pending
	// orders only; admins may edit any order and set its status too.
	UpdateOrder(ctx context.Context, callerID uuid.UUID, role user.Role, id string, req UpdateOrderRequest) (*Order, error)

	// CancelOrder flips the owner's pending order to cancelled and returns
	// every reserved quantity to stock. The order and its details survive.
	CancelOrder(ctx context.Context, callerID uuid.UUID, id string) (*Order, error)

	// DeleteOrder restores stock and hard-deletes the order with its
	// details. Owners may delete pending orders; admins any order.
	DeleteOrder(ctx context.Context, callerID uuid.UUID, role user.Role, id string) error
}

type service struct {
	repo Repository
}

// NewService creates a new order service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// requestLine is one distinct medicine with its aggregate requested quantity.
type requestLine struct {
	medicineID uuid.UUID
	quantity   int
}

// normalizeItems validates the raw request items and merges duplicate
// medicine ids into one line each, preserving first-seen order.
func normalizeItems(items []OrderItemRequest) ([]requestLine, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Msg: "order must contain at least one item"}
	}
	index := make(map[uuid.UUID]int, len(items))
	var lines []requestLine
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, &ValidationError{Msg: "quantity must be at least 1"}
		}
		id, err := uuid.Parse(item.MedicineID)
		if err != nil {
			return nil, &ValidationError{Msg: "invalid medicine id: " + item.MedicineID}
		}
		if i, seen := index[id]; seen {
			lines[i].quantity += item.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, requestLine{medicineID: id, quantity: item.Quantity})
	}
	return lines, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*Order, error) {
	// All request validation happens before any transaction is opened.
	lines, err := normalizeItems(req.Items)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, &ValidationError{Msg: "shipping address is required"}
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, &ValidationError{Msg: "payment method is required"}
	}

	// Lock medicines in sorted id order so concurrent placements touching
	// overlapping sets cannot deadlock.
	lockOrder := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		lockOrder[i] = line.medicineID
	}
	sort.Slice(lockOrder, func(i, j int) bool {
		return strings.Compare(lockOrder[i].String(), lockOrder[j].String()) < 0
	})

	var placed *Order
	err = s.repo.InTx(ctx, func(tx Tx) error {
		medicines := make(map[uuid.UUID]*medicine.Medicine, len(lines))
		for _, id := range lockOrder {
			m, err := tx.MedicineForUpdate(ctx, id)
			if errors.Is(err, medicine.ErrNotFound) {
				// The first missing medicine aborts the whole order;
				// stock shortfalls below are collected in full instead.
				return &NotFoundError{Resource: "medicine", ID: id.String()}
			}
			if err != nil {
				return err
			}
			medicines[id] = m
		}

		var shortfalls []StockShortfall
		total := decimal.Zero
		for _, line := range lines {
			m := medicines[line.medicineID]
			if m.Stock < line.quantity {
				shortfalls = append(shortfalls, StockShortfall{
					MedicineID: m.ID,
					Name:       m.Name,
					Available:  m.Stock,
					Requested:  line.quantity,
				})
				continue
			}
			total = total.Add(m.Price.Mul(decimal.NewFromInt(int64(line.quantity))))
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{Items: shortfalls}
		}

		o := &Order{
			ID:              uuid.New(),
			UserID:          userID,
			TotalAmount:     total,
			Status:          StatusPending,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Notes:           req.Notes,
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}

		for _, line := range lines {
			m := medicines[line.medicineID]
			if err := tx.AdjustStock(ctx, m.ID, -line.quantity); err != nil {
				return err
			}
			d := &OrderDetail{
				ID:         uuid.New(),
				OrderID:    o.ID,
				MedicineID: m.ID,
				Quantity:   line.quantity,
				Price:      m.Price,
				Subtotal:   m.Price.Mul(decimal.NewFromInt(int64(line.quantity))),
				Medicine: &MedicineSummary{
					ID:    m.ID,
					Name:  m.Name,
					Price: m.Price,
					Image: m.Image,
				},
			}
			if err := tx.CreateDetail(ctx, d); err != nil {
				return err
			}
			o.Details = append(o.Details, d)
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return placed, nil
}

func (s *service) GetOrder(ctx context.Context, callerID uuid.UUID, role user.Role, id string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id, true)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if !authorize(callerID, role, o.UserID) {
		return nil, &AuthorizationError{Msg: "not authorized to view this order"}
	}
	return o, nil
}

func (s *service) ListAllOrders(ctx context.Context) ([]*Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return orders, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	status := OrderStatus(strings.ToLower(req.Status))
	if !status.Valid() {
		return nil, &ValidationError{Msg: "unknown order status: " + req.Status}
	}
	o, err := s.repo.GetOrderByID(ctx, id, false)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if err := s.repo.UpdateStatus(ctx, o.ID, status); err != nil {
		return nil, wrapPersistence(err)
	}
	o.Status = status
	return o, nil
}

func (s *service) UpdateOrder(ctx context.Context, callerID uuid.UUID, role user.Role, id string, req UpdateOrderRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id, false)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if !authorize(callerID, role, o.UserID) {
		return nil, &AuthorizationError{Msg: "not authorized to modify this order"}
	}
	if role != user.RoleAdmin && o.Status != StatusPending {
		return nil, &InvalidStateError{Msg: "only pending orders can be edited"}
	}

	if strings.TrimSpace(req.ShippingAddress) != "" {
		o.ShippingAddress = req.ShippingAddress
	}
	if strings.TrimSpace(req.PaymentMethod) != "" {
		o.PaymentMethod = req.PaymentMethod
	}
	o.Notes = req.Notes
	if role == user.RoleAdmin && req.Status != "" {
		status := OrderStatus(strings.ToLower(req.Status))
		if !status.Valid() {
			return nil, &ValidationError{Msg: "unknown order status: " + req.Status}
		}
		o.Status = status
	}

	if err := s.repo.UpdateFields(ctx, o); err != nil {
		return nil, wrapPersistence(err)
	}
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, callerID uuid.UUID, id string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id, false)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if o.UserID != callerID {
		return nil, &AuthorizationError{Msg: "not authorized to modify this order"}
	}
	if o.Status != StatusPending {
		return nil, &InvalidStateError{Msg: "only pending orders can be cancelled"}
	}

	err = s.repo.InTx(ctx, func(tx Tx) error {
		// The conditional transition keeps a racing cancel/delete from
		// crediting stock twice: whoever loses sees !ok and rolls back.
		ok, err := tx.TransitionStatus(ctx, o.ID, StatusPending, StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return &InvalidStateError{Msg: "only pending orders can be cancelled"}
		}
		details, err := tx.DetailsByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, d := range details {
			if err := tx.AdjustStock(ctx, d.MedicineID, d.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}

	o.Status = StatusCancelled
	return o, nil
}

func (s *service) DeleteOrder(ctx context.Context, callerID uuid.UUID, role user.Role, id string) error {
	o, err := s.repo.GetOrderByID(ctx, id, false)
	if err != nil {
		return wrapPersistence(err)
	}
	if !authorize(callerID, role, o.UserID) {
		return &AuthorizationError{Msg: "not authorized to delete this order"}
	}
	if role != user.RoleAdmin && o.Status != StatusPending {
		return &InvalidStateError{Msg: "only pending orders can be deleted"}
	}

	err = s.repo.InTx(ctx, func(tx Tx) error {
		details, err := tx.DetailsByOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, d := range details {
			if err := tx.AdjustStock(ctx, d.MedicineID, d.Quantity); err != nil {
				return err
			}
		}
		if err := tx.DeleteDetailsByOrder(ctx, o.ID); err != nil {
			return err
		}
		existed, err := tx.DeleteOrder(ctx, o.ID)
		if err != nil {
			return err
		}
		if !existed {
			// A concurrent delete won; roll back our stock restores.
			return &NotFoundError{Resource: "order", ID: id}
		}
		return nil
	})
	return wrapPersistence(err)
}

// authorize is the single owner-or-admin capability check shared by every
// per-order operation.
func authorize(callerID uuid.UUID, role user.Role, ownerID uuid.UUID) bool {
	return role == user.RoleAdmin || callerID == ownerID
}
