package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrValidation   = errors.New("validation")
	ErrEmptyCart    = fmt.Errorf("cart empty: %w", ErrValidation)
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// storeErr maps repository errors onto the service sentinels.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s references a missing record: %w", what, ErrValidation)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func authorize(p models.Principal, userID uint) error {
	if !p.CanAccess(userID) {
		return fmt.Errorf("user %d: %w", userID, ErrForbidden)
	}
	return nil
}

func requireAdmin(p models.Principal) error {
	if !p.IsAdmin() {
		return fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	return nil
}
