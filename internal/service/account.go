package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type AccountService struct {
	Repo *repo.GormRepo
}

type AddressInput struct {
	FullName   *string
	Line1      *string
	Line2      *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
	Phone      *string
	IsDefault  bool
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func (in AddressInput) apply(a *models.Address) {
	setTrimmed(&a.FullName, in.FullName)
	setTrimmed(&a.Line1, in.Line1)
	setTrimmed(&a.Line2, in.Line2)
	setTrimmed(&a.City, in.City)
	setTrimmed(&a.State, in.State)
	setTrimmed(&a.PostalCode, in.PostalCode)
	setTrimmed(&a.Country, in.Country)
	setTrimmed(&a.Phone, in.Phone)
}

func validateAddress(a *models.Address) error {
	fields := []struct{ name, value string }{
		{"fullName", a.FullName},
		{"line1", a.Line1},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing address fields %v: %w", missing, ErrValidation)
	}
	return nil
}

func (s *AccountService) ListAddresses(ctx context.Context, p models.Principal, userID uint) ([]models.Address, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	items, err := s.Repo.GetAddresses(ctx, userID)
	return items, storeErr(err, "addresses")
}

// CreateAddress stores a new address. The first address of a user, or one
// created with IsDefault, becomes the only default.
func (s *AccountService) CreateAddress(ctx context.Context, p models.Principal, userID uint, in AddressInput) (*models.Address, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	a := &models.Address{UserID: userID, IsDefault: in.IsDefault}
	in.apply(a)
	if err := validateAddress(a); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateAddress(ctx, a); err != nil {
		return nil, storeErr(err, "address")
	}
	return a, nil
}

func (s *AccountService) UpdateAddress(ctx context.Context, p models.Principal, userID, id uint, in AddressInput) (*models.Address, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	a, err := s.Repo.GetAddress(ctx, userID, id)
	if err != nil {
		return nil, storeErr(err, "address")
	}
	in.apply(a)
	if err := validateAddress(a); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveAddress(ctx, a); err != nil {
		return nil, storeErr(err, "address")
	}
	if in.IsDefault && !a.IsDefault {
		return s.SetDefaultAddress(ctx, p, userID, id)
	}
	return a, nil
}

func (s *AccountService) DeleteAddress(ctx context.Context, p models.Principal, userID, id uint) error {
	if err := authorize(p, userID); err != nil {
		return err
	}
	return storeErr(s.Repo.DeleteAddress(ctx, userID, id), "address")
}

func (s *AccountService) SetDefaultAddress(ctx context.Context, p models.Principal, userID, id uint) (*models.Address, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	a, err := s.Repo.SetDefaultAddress(ctx, userID, id)
	if err != nil {
		return nil, storeErr(err, "address")
	}
	return a, nil
}

type PaymentMethodInput struct {
	Type        *string
	Provider    *string
	HolderName  *string
	Last4       *string
	ExpiryMonth *int
	ExpiryYear  *int
	IsDefault   bool
}

func (in PaymentMethodInput) apply(pm *models.PaymentMethod) {
	setTrimmed(&pm.Type, in.Type)
	setTrimmed(&pm.Provider, in.Provider)
	setTrimmed(&pm.HolderName, in.HolderName)
	setTrimmed(&pm.Last4, in.Last4)
	if in.ExpiryMonth != nil {
		pm.ExpiryMonth = *in.ExpiryMonth
	}
	if in.ExpiryYear != nil {
		pm.ExpiryYear = *in.ExpiryYear
	}
}

func validatePaymentMethod(pm *models.PaymentMethod) error {
	if pm.Type == "" {
		return fmt.Errorf("payment method type is required: %w", ErrValidation)
	}
	if pm.Last4 != "" {
		if len(pm.Last4) != 4 || strings.Trim(pm.Last4, "0123456789") != "" {
			return fmt.Errorf("last4 must be four digits: %w", ErrValidation)
		}
	}
	if pm.ExpiryMonth != 0 && (pm.ExpiryMonth < 1 || pm.ExpiryMonth > 12) {
		return fmt.Errorf("expiry month must be between 1 and 12: %w", ErrValidation)
	}
	if pm.ExpiryYear != 0 && pm.ExpiryYear < 2000 {
		return fmt.Errorf("expiry year %d is invalid: %w", pm.ExpiryYear, ErrValidation)
	}
	return nil
}

// expired reports whether a card with the given expiry is no longer usable at now.
func expired(month, year int, now time.Time) bool {
	if month == 0 || year == 0 {
		return false
	}
	y, m, _ := now.Date()
	return year < y || (year == y && month < int(m))
}

func (s *AccountService) ListPaymentMethods(ctx context.Context, p models.Principal, userID uint) ([]models.PaymentMethod, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	items, err := s.Repo.GetPaymentMethods(ctx, userID)
	return items, storeErr(err, "payment methods")
}

func (s *AccountService) CreatePaymentMethod(ctx context.Context, p models.Principal, userID uint, in PaymentMethodInput) (*models.PaymentMethod, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	pm := &models.PaymentMethod{UserID: userID, IsDefault: in.IsDefault}
	in.apply(pm)
	if err := validatePaymentMethod(pm); err != nil {
		return nil, err
	}
	if expired(pm.ExpiryMonth, pm.ExpiryYear, time.Now()) {
		return nil, fmt.Errorf("payment method has expired: %w", ErrValidation)
	}
	if err := s.Repo.CreatePaymentMethod(ctx, pm); err != nil {
		return nil, storeErr(err, "payment method")
	}
	return pm, nil
}

func (s *AccountService) UpdatePaymentMethod(ctx context.Context, p models.Principal, userID, id uint, in PaymentMethodInput) (*models.PaymentMethod, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	pm, err := s.Repo.GetPaymentMethod(ctx, userID, id)
	if err != nil {
		return nil, storeErr(err, "payment method")
	}
	in.apply(pm)
	if err := validatePaymentMethod(pm); err != nil {
		return nil, err
	}
	if err := s.Repo.SavePaymentMethod(ctx, pm); err != nil {
		return nil, storeErr(err, "payment method")
	}
	if in.IsDefault && !pm.IsDefault {
		return s.SetDefaultPaymentMethod(ctx, p, userID, id)
	}
	return pm, nil
}

func (s *AccountService) DeletePaymentMethod(ctx context.Context, p models.Principal, userID, id uint) error {
	if err := authorize(p, userID); err != nil {
		return err
	}
	return storeErr(s.Repo.DeletePaymentMethod(ctx, userID, id), "payment method")
}

func (s *AccountService) SetDefaultPaymentMethod(ctx context.Context, p models.Principal, userID, id uint) (*models.PaymentMethod, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	pm, err := s.Repo.SetDefaultPaymentMethod(ctx, userID, id)
	if err != nil {
		return nil, storeErr(err, "payment method")
	}
	return pm, nil
}
