package repository

import "strings"

// isUniqueViolation matches duplicate-key errors across the drivers we run on
// (MySQL in production, SQLite in tests); gorm does not always translate them
// to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
