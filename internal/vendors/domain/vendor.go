package domain

import (
	"time"

	"vendor_chat_portal/pkg/encrypt"
)

// Vendor a vendor account created by the admin form.
// Password holds a bcrypt hash, never the cleartext.
type Vendor struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Company   string
	CreatedAt int64
}

// IsPasswordMatch compare a login attempt against the stored hash
func (v *Vendor) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(v.Password, inputPwd)
}

// Session the identity held for a logged-in vendor or a joined customer.
// Customer sessions are scoped to the vendor whose chat link they opened.
type Session struct {
	UserID    string    `json:"UserID"`
	Name      string    `json:"Name"`
	Role      string    `json:"Role"`
	VendorID  string    `json:"VendorID"`
	Email     string    `json:"Email,omitempty"`
	Company   string    `json:"Company,omitempty"`
	CreatedAt time.Time `json:"CreatedAt"`
}

// VendorQuery join conditions are used to query vendors
type VendorQuery struct {
	ID    *string `db:"vendor_id"`
	Email *string `db:"email"`
}
