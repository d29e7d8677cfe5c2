// internal/store/customer.go
//
// Customer rows and CRUD.
//
// Context
// -------
// A customer owns zero or more sites and carries the quota limits of its
// plan.  Customers are created by the onboarding collaborator and updated
// only through an explicit allow-list of mutable fields; the email is the
// external identity and is immutable here.
//
// Schema reference
//
//	CREATE TABLE customers (
//	    id               VARCHAR(64)  PRIMARY KEY,
//	    email            VARCHAR(256) NOT NULL UNIQUE,
//	    name             VARCHAR(256) NOT NULL,
//	    company_name     VARCHAR(256) NOT NULL DEFAULT '',
//	    plan_type        VARCHAR(32)  NOT NULL DEFAULT 'starter',
//	    status           VARCHAR(32)  NOT NULL DEFAULT 'active',
//	    max_sites        INT          NOT NULL DEFAULT 1,
//	    max_storage_mb   INT          NOT NULL DEFAULT 512,
//	    max_bandwidth_gb INT          NOT NULL DEFAULT 10,
//	    metadata         JSON         NULL,
//	    created_at       TIMESTAMP    NOT NULL,
//	    updated_at       TIMESTAMP    NOT NULL
//	);
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata is the free-form JSON column on customers.
type Metadata map[string]any

// Value marshals metadata for storage; nil maps store as SQL NULL.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan decodes the JSON column.
func (m *Metadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("store: cannot scan %T into Metadata", src)
	}
}

// Customer mirrors one row in the `customers` table.
type Customer struct {
	ID             string    `db:"id"`
	Email          string    `db:"email"`
	Name           string    `db:"name"`
	CompanyName    string    `db:"company_name"`
	PlanType       string    `db:"plan_type"`
	Status         string    `db:"status"`
	MaxSites       int       `db:"max_sites"`
	MaxStorageMB   int       `db:"max_storage_mb"`
	MaxBandwidthGB int       `db:"max_bandwidth_gb"`
	Metadata       Metadata  `db:"metadata"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// NewCustomer is the input for CreateCustomer.  Zero quota fields fall
// back to the starter-plan defaults.
type NewCustomer struct {
	Email          string
	Name           string
	CompanyName    string
	PlanType       string
	MaxSites       int
	MaxStorageMB   int
	MaxBandwidthGB int
	Metadata       map[string]any
}

// Starter-plan defaults applied when NewCustomer leaves quotas at zero.
const (
	defaultPlanType       = "starter"
	defaultMaxSites       = 1
	defaultMaxStorageMB   = 512
	defaultMaxBandwidthGB = 10
)

const customerColumns = `id, email, name, company_name, plan_type, status,
       max_sites, max_storage_mb, max_bandwidth_gb, metadata,
       created_at, updated_at`

// CreateCustomer inserts a new customer and returns the stored row.  A
// duplicate email surfaces as ErrDuplicateEmail.
func (s *Store) CreateCustomer(ctx context.Context, n NewCustomer) (*Customer, error) {
	if n.Email == "" {
		return nil, errors.New("customer email is required")
	}

	c := &Customer{
		ID:             uuid.NewString(),
		Email:          n.Email,
		Name:           n.Name,
		CompanyName:    n.CompanyName,
		PlanType:       n.PlanType,
		Status:         "active",
		MaxSites:       n.MaxSites,
		MaxStorageMB:   n.MaxStorageMB,
		MaxBandwidthGB: n.MaxBandwidthGB,
		Metadata:       Metadata(n.Metadata),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	c.UpdatedAt = c.CreatedAt

	if c.PlanType == "" {
		c.PlanType = defaultPlanType
	}
	if c.MaxSites == 0 {
		c.MaxSites = defaultMaxSites
	}
	if c.MaxStorageMB == 0 {
		c.MaxStorageMB = defaultMaxStorageMB
	}
	if c.MaxBandwidthGB == 0 {
		c.MaxBandwidthGB = defaultMaxBandwidthGB
	}

	const q = `
        INSERT INTO customers (` + customerColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		c.ID, c.Email, c.Name, c.CompanyName, c.PlanType, c.Status,
		c.MaxSites, c.MaxStorageMB, c.MaxBandwidthGB, c.Metadata,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, c.Email)
		}
		return nil, err
	}
	return c, nil
}

// GetCustomer fetches one customer by id.
func (s *Store) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = ? LIMIT 1`
	var c Customer
	if err := s.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &c, nil
}

// GetCustomerByEmail fetches one customer by its unique email.
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE email = ? LIMIT 1`
	var c Customer
	if err := s.db.GetContext(ctx, &c, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, email)
		}
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns every customer, newest first.
func (s *Store) ListCustomers(ctx context.Context) ([]Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC`
	var rows []Customer
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// customerMutable is the compile-time allow-list of updatable customer
// fields.  Email and id are identity and deliberately absent.
var customerMutable = map[string]struct{}{
	"name":             {},
	"company_name":     {},
	"plan_type":        {},
	"status":           {},
	"max_sites":        {},
	"max_storage_mb":   {},
	"max_bandwidth_gb": {},
	"metadata":         {},
}

// UpdateCustomer applies a partial update restricted to the mutable-field
// allow-list.  Any other key fails the whole update with ErrInvalidField
// before touching the database.
func (s *Store) UpdateCustomer(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := customerMutable[k]; !ok {
			return fmt.Errorf("%w: %s", ErrInvalidField, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		v := fields[k]
		if k == "metadata" {
			blob, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal metadata: %w", err)
			}
			v = blob
		}
		sets = append(sets, k+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Truncate(time.Second), id)

	q := `UPDATE customers SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// updated_at always changes, so zero rows means the id is absent.
		return fmt.Errorf("%w: customer %s", ErrNotFound, id)
	}
	return nil
}
