package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendor_chat_portal/internal/vendors/domain"
	"vendor_chat_portal/internal/vendors/repository"
	"vendor_chat_portal/pkg/database"
	"vendor_chat_portal/pkg/encrypt"
	errprocess "vendor_chat_portal/pkg/err"
	"vendor_chat_portal/pkg/logger"
	token "vendor_chat_portal/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidCredentials returned for a failed login, same message for
// unknown email and wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// VendorUseCase application services for the vendor directory and sessions
type VendorUseCase interface {
	CreateVendor(ctx context.Context, name, email, password, company string) (*domain.Vendor, error)
	FindVendor(ctx context.Context, param *domain.VendorQuery) (*domain.Vendor, error)
	Login(ctx context.Context, email, password string) (string, *domain.Vendor, error)
	Logout(ctx context.Context, userID string) error
	RestoreSession(ctx context.Context, userID string) (*domain.Session, error)
	ChatLink(vendorID string) string
}

type vendorUseCase struct {
	vendorRepo  repository.VendorRepository
	sessionRepo database.RedisRepository[domain.Session]
	sessionTTL  time.Duration
	baseURL     string
}

// NewVendorUseCase create a new VendorUseCase
func NewVendorUseCase(vendorRepo repository.VendorRepository,
	sessionRepo database.RedisRepository[domain.Session],
	sessionTTL time.Duration,
	baseURL string,
) VendorUseCase {
	return &vendorUseCase{
		vendorRepo:  vendorRepo,
		sessionRepo: sessionRepo,
		sessionTTL:  sessionTTL,
		baseURL:     baseURL,
	}
}

// CreateVendor insert a new vendor record with a hashed password.
// There is no uniqueness check on email: two vendors may share one address.
func (v *vendorUseCase) CreateVendor(ctx context.Context, name, email, password, company string) (*domain.Vendor, error) {
	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return nil, err
	}

	vendor := domain.Vendor{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  pw,
		Company:   company,
		CreatedAt: time.Now().UnixMilli(),
	}

	logger.Log.Info("usecase CreateVendor", zap.String("email", email), zap.String("company", company))

	if err := v.vendorRepo.CreateVendor(ctx, &vendor); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("create vendor err: %v", err))
	}

	return &vendor, nil
}

// FindVendor look up a vendor by id or email
func (v *vendorUseCase) FindVendor(ctx context.Context, param *domain.VendorQuery) (*domain.Vendor, error) {
	return v.vendorRepo.FindByVendor(ctx, param)
}

// Login verify credentials and establish a vendor session
func (v *vendorUseCase) Login(ctx context.Context, email, password string) (string, *domain.Vendor, error) {
	vendor, err := v.vendorRepo.FindByVendor(ctx, &domain.VendorQuery{Email: &email})
	if err != nil {
		logger.Log.Error("login email can't find", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}

	if err = vendor.IsPasswordMatch(password); err != nil {
		logger.Log.Error("login password can't match", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}

	t, err := token.GenerateJWTWrapper(vendor.ID, vendor.Name, string(token.RoleVendor))
	if err != nil {
		return "", nil, err
	}

	session := domain.Session{
		UserID:    vendor.ID,
		Name:      vendor.Name,
		Role:      string(token.RoleVendor),
		VendorID:  vendor.ID,
		Email:     vendor.Email,
		Company:   vendor.Company,
		CreatedAt: time.Now(),
	}

	if err := v.sessionRepo.Set(ctx, vendor.ID, session, v.sessionTTL); err != nil {
		return "", nil, err
	}

	return t, vendor, nil
}

// Logout clear the stored session, the identity was already taken from the token
func (v *vendorUseCase) Logout(ctx context.Context, userID string) error {
	logger.Log.Debug("logout", zap.String("user", userID))

	return v.sessionRepo.Del(ctx, userID)
}

// RestoreSession read the stored identity, used by clients on page load
func (v *vendorUseCase) RestoreSession(ctx context.Context, userID string) (*domain.Session, error) {
	session, err := v.sessionRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ChatLink build the shareable customer entry link for a vendor
func (v *vendorUseCase) ChatLink(vendorID string) string {
	return fmt.Sprintf("%s/chat/%s", v.baseURL, vendorID)
}
