package repositories

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// pqUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pqUniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation reports whether err is a duplicate-key failure. lib/pq
// surfaces it as *pq.Error; gorm.ErrDuplicatedKey covers translated errors
// from other drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
