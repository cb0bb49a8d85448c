package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
)

// notFound translates gorm's missing-record error into the domain error.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return err
}
