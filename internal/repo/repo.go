package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrReviewExists = errors.New("review already exists")

type GormRepo struct {
	DB *gorm.DB
}

// isDuplicate reports unique-constraint violations from any of the drivers.
// lib/pq errors are not translated by gorm, hence the message check.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
