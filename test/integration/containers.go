package integration

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const schema = `
CREATE TABLE users (
	id UUID PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	profile_image TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'customer',
	refresh_token TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE medicines (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price NUMERIC(10,2) NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	manufacturer TEXT NOT NULL DEFAULT '',
	dosage TEXT NOT NULL DEFAULT '',
	expiry_date TIMESTAMPTZ,
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE orders (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	total_amount NUMERIC(10,2) NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	shipping_address TEXT NOT NULL,
	payment_method TEXT NOT NULL,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE order_details (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders(id),
	medicine_id UUID NOT NULL REFERENCES medicines(id),
	quantity INTEGER NOT NULL DEFAULT 1,
	price NUMERIC(10,2) NOT NULL,
	subtotal NUMERIC(10,2) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

type Env struct {
	PG     *postgres.PostgresContainer
	DB     *sql.DB
	Cancel context.CancelFunc
}

// Setup starts a throwaway postgres container and applies the schema.
// Callers should skip their test when this fails: it means no container
// runtime is available.
func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("apotek"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		cancel()
		return nil, err
	}

	db, err := sql.Open("postgres", pgURL)
	if err != nil {
		cancel()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		cancel()
		return nil, err
	}

	return &Env{PG: pgC, DB: db, Cancel: cancel}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	_ = e.DB.Close()
	_ = e.PG.Terminate(ctx)
	e.Cancel()
}
