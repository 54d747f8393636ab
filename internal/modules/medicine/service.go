package medicine

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a medicine does not exist.
var ErrNotFound = errors.New("medicine not found")

// Service defines catalog business logic.
type Service interface {
	CreateMedicine(ctx context.Context, req UpsertRequest) (*Medicine, error)
	GetMedicine(ctx context.Context, id string) (*Medicine, error)
	ListMedicines(ctx context.Context, f ListFilter) ([]*Medicine, error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateMedicine(ctx context.Context, id string, req UpsertRequest) (*Medicine, error)
	DeleteMedicine(ctx context.Context, id string) error
}

type service struct{ repo Repository }

// NewService creates a new medicine service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateMedicine(ctx context.Context, req UpsertRequest) (*Medicine, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.Category == "" {
		return nil, errors.New("category is required")
	}
	if req.Price.IsNegative() {
		return nil, errors.New("price must not be negative")
	}

	m := &Medicine{
		ID:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Image:        req.Image,
		Category:     req.Category,
		Manufacturer: req.Manufacturer,
		Dosage:       req.Dosage,
		ExpiryDate:   req.ExpiryDate,
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, errors.New("stock must not be negative")
		}
		m.Stock = *req.Stock
	}
	if req.Featured != nil {
		m.Featured = *req.Featured
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) GetMedicine(ctx context.Context, id string) (*Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListMedicines(ctx context.Context, f ListFilter) ([]*Medicine, error) {
	return s.repo.List(ctx, f)
}

func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *service) UpdateMedicine(ctx context.Context, id string, req UpsertRequest) (*Medicine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		m.Name = req.Name
	}
	if req.Description != "" {
		m.Description = req.Description
	}
	if !req.Price.IsZero() {
		if req.Price.IsNegative() {
			return nil, errors.New("price must not be negative")
		}
		m.Price = req.Price
	}
	if req.Image != "" {
		m.Image = req.Image
	}
	if req.Category != "" {
		m.Category = req.Category
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, errors.New("stock must not be negative")
		}
		m.Stock = *req.Stock
	}
	if req.Manufacturer != "" {
		m.Manufacturer = req.Manufacturer
	}
	if req.Dosage != "" {
		m.Dosage = req.Dosage
	}
	if req.ExpiryDate != nil {
		m.ExpiryDate = req.ExpiryDate
	}
	if req.Featured != nil {
		m.Featured = *req.Featured
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) DeleteMedicine(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
