package medicine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const medicineColumns = `id,name,description,price,image,category,stock,manufacturer,dosage,expiry_date,featured,created_at,updated_at`

func (r *postgresRepo) Create(ctx context.Context, m *Medicine) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medicines
		  (id, name, description, price, image, category, stock, manufacturer, dosage, expiry_date, featured)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		m.ID, m.Name, m.Description, m.Price, m.Image, m.Category,
		m.Stock, m.Manufacturer, m.Dosage, m.ExpiryDate, m.Featured)
	return err
}

func scanMedicine(scan func(...interface{}) error) (*Medicine, error) {
	m := &Medicine{}
	var expiry sql.NullTime
	err := scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Image, &m.Category,
		&m.Stock, &m.Manufacturer, &m.Dosage, &expiry, &m.Featured,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		m.ExpiryDate = &expiry.Time
	}
	return m, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Medicine, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+medicineColumns+` FROM medicines WHERE id=$1`, uid)
	m, err := scanMedicine(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return m, err
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE 1=1`
	args := []interface{}{}
	n := 1
	if f.Category != "" {
		query += fmt.Sprintf(` AND category=$%d`, n)
		args = append(args, f.Category)
		n++
	}
	if f.Search != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d`, n)
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if f.Featured {
		query += ` AND featured=true`
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, n)
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medicines []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows.Scan)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

func (r *postgresRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM medicines ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, m *Medicine) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE medicines
		SET name=$1, description=$2, price=$3, image=$4, category=$5,
		    stock=$6, manufacturer=$7, dosage=$8, expiry_date=$9, featured=$10, updated_at=NOW()
		WHERE id=$11`,
		m.Name, m.Description, m.Price, m.Image, m.Category,
		m.Stock, m.Manufacturer, m.Dosage, m.ExpiryDate, m.Featured, m.ID)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id=$1`, uid)
	return err
}
