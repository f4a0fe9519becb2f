package serviceimpl

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"photocritic/domain/services"
)

// translate maps storage errors onto the service sentinels.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, services.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, services.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", what, err)
}
