package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"vendor_chat_portal/internal/vendors/domain"
)

// ErrVendorNotFound returned when no vendor matches the query
var ErrVendorNotFound = errors.New("vendor not found")

// VendorRepository definition vendor directory access
type VendorRepository interface {
	CreateVendor(ctx context.Context, vendor *domain.Vendor) error
	FindByVendor(ctx context.Context, vendorQuery *domain.VendorQuery) (*domain.Vendor, error)
}

type vendorRepository struct {
	db *pgxpool.Pool
}

// NewVendorRepository create a VendorRepository
func NewVendorRepository(db *pgxpool.Pool) VendorRepository {
	return &vendorRepository{db: db}
}

// CreateVendor insert a vendor row. Email is intentionally not unique:
// the admin form allows duplicate vendor emails.
func (r *vendorRepository) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO vendor(vendor_id, name, email, password, company, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		vendor.ID, vendor.Name, vendor.Email, vendor.Password, vendor.Company, vendor.CreatedAt)
	return err
}

func (r *vendorRepository) FindByVendor(ctx context.Context, vendorQuery *domain.VendorQuery) (*domain.Vendor, error) {
	queryStr := "SELECT vendor_id, name, email, password, company, created_at FROM vendor WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if vendorQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *vendorQuery.Email)
		paramCount++
	}
	if vendorQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND vendor_id = $%d", paramCount)
		params = append(params, *vendorQuery.ID)
		paramCount++
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var vendor domain.Vendor
	err := row.Scan(&vendor.ID, &vendor.Name, &vendor.Email, &vendor.Password, &vendor.Company, &vendor.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}

	return &vendor, nil
}
