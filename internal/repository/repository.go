package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository implementation when a lookup
// matches no row.
var ErrNotFound = errors.New("record not found")

// translate maps driver-level errors onto repository errors.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
