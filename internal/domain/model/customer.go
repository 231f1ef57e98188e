package model

import (
	"time"

	"github.com/microfin/loanbook/internal/domain/apperror"
)

// ---------------------------------------------------------------------------
// Customer entity
// ---------------------------------------------------------------------------

// Customer is a borrower record. Loans reference customers by ID; a customer
// must exist before a loan can be issued against them.
type Customer struct {
	id        string
	fullName  string
	nic       string
	phone     string
	address   string
	notes     string
	active    bool
	version   int
	createdAt time.Time
	updatedAt time.Time
}

// CustomerChanges carries editable customer fields. Nil fields are untouched.
type CustomerChanges struct {
	FullName *string
	NIC      *string
	Phone    *string
	Address  *string
	Notes    *string
	Active   *bool
}

// NewCustomer creates an active customer.
func NewCustomer(id, fullName, nic, phone, address, notes string, now time.Time) (Customer, error) {
	if id == "" {
		return Customer{}, apperror.Validation("customer id is required")
	}
	if fullName == "" {
		return Customer{}, apperror.Validation("full name is required")
	}
	if nic == "" {
		return Customer{}, apperror.Validation("NIC is required")
	}
	if phone == "" {
		return Customer{}, apperror.Validation("phone number is required")
	}
	return Customer{
		id:        id,
		fullName:  fullName,
		nic:       nic,
		phone:     phone,
		address:   address,
		notes:     notes,
		active:    true,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructCustomer rebuilds a Customer from persistence.
func ReconstructCustomer(
	id, fullName, nic, phone, address, notes string,
	active bool,
	version int,
	createdAt, updatedAt time.Time,
) Customer {
	return Customer{
		id:        id,
		fullName:  fullName,
		nic:       nic,
		phone:     phone,
		address:   address,
		notes:     notes,
		active:    active,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Apply edits the customer's details.
func (c Customer) Apply(ch CustomerChanges, now time.Time) (Customer, error) {
	next := c
	if ch.FullName != nil {
		if *ch.FullName == "" {
			return c, apperror.Validation("full name is required")
		}
		next.fullName = *ch.FullName
	}
	if ch.NIC != nil {
		if *ch.NIC == "" {
			return c, apperror.Validation("NIC is required")
		}
		next.nic = *ch.NIC
	}
	if ch.Phone != nil {
		if *ch.Phone == "" {
			return c, apperror.Validation("phone number is required")
		}
		next.phone = *ch.Phone
	}
	if ch.Address != nil {
		next.address = *ch.Address
	}
	if ch.Notes != nil {
		next.notes = *ch.Notes
	}
	if ch.Active != nil {
		next.active = *ch.Active
	}
	next.updatedAt = now
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c Customer) ID() string           { return c.id }
func (c Customer) FullName() string     { return c.fullName }
func (c Customer) NIC() string          { return c.nic }
func (c Customer) Phone() string        { return c.phone }
func (c Customer) Address() string      { return c.address }
func (c Customer) Notes() string        { return c.notes }
func (c Customer) Active() bool         { return c.active }
func (c Customer) Version() int         { return c.version }
func (c Customer) CreatedAt() time.Time { return c.createdAt }
func (c Customer) UpdatedAt() time.Time { return c.updatedAt }
