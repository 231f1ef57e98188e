package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/microfin/loanbook/internal/domain/apperror"
	"github.com/microfin/loanbook/internal/domain/model"
	pkgpostgres "github.com/microfin/loanbook/pkg/postgres"
)

// CustomerRepo implements port.CustomerRepository.
type CustomerRepo struct {
	db pkgpostgres.Querier
}

// NewCustomerRepo creates a new PostgreSQL-backed customer repository.
func NewCustomerRepo(db pkgpostgres.Querier) *CustomerRepo {
	return &CustomerRepo{db: db}
}

const customerColumns = `
	id, full_name, nic, phone, address, notes, active,
	version, created_at, updated_at`

// Save persists a customer with the same compare-and-swap rule as loans.
func (r *CustomerRepo) Save(ctx context.Context, c model.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			full_name  = EXCLUDED.full_name,
			nic        = EXCLUDED.nic,
			phone      = EXCLUDED.phone,
			address    = EXCLUDED.address,
			notes      = EXCLUDED.notes,
			active     = EXCLUDED.active,
			version    = customers.version + 1,
			updated_at = EXCLUDED.updated_at
		WHERE customers.version = $8
	`
	tag, err := r.db.Exec(ctx, query,
		c.ID(), c.FullName(), c.NIC(), c.Phone(), c.Address(), c.Notes(), c.Active(),
		c.Version(), c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.Conflict("customer %s was modified concurrently", c.ID())
	}
	return nil
}

// FindByID retrieves one customer.
func (r *CustomerRepo) FindByID(ctx context.Context, id string) (model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := scanCustomerRow(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Customer{}, apperror.NotFound("customer %s not found", id)
	}
	return c, err
}

// FindByNIC retrieves one customer by national identity number.
func (r *CustomerRepo) FindByNIC(ctx context.Context, nic string) (model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE nic = $1`
	c, err := scanCustomerRow(r.db.QueryRow(ctx, query, nic))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Customer{}, apperror.NotFound("customer with NIC %s not found", nic)
	}
	return c, err
}

// List retrieves customers, newest first.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomerRow(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanCustomerRow(s scannable) (model.Customer, error) {
	var (
		id, fullName, nic, phone, address, notes string
		active                                   bool
		version                                  int
		createdAt, updatedAt                     time.Time
	)
	err := s.Scan(
		&id, &fullName, &nic, &phone, &address, &notes, &active,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Customer{}, err
	}
	return model.ReconstructCustomer(
		id, fullName, nic, phone, address, notes, active,
		version, createdAt, updatedAt,
	), nil
}
