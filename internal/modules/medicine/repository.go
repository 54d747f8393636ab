package medicine

import "context"

// Repository defines data access for the medicine catalog. Stock is only
// written here by admin CRUD; order placement and reversal adjust it inside
// their own transaction.
type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id string) (*Medicine, error)
	List(ctx context.Context, f ListFilter) ([]*Medicine, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id string) error
}
