// Package storetest provides an in-memory audit store for tests.
package storetest

import (
	"testing"

	store "github.com/xiaot623/gogo/askbot/internal/repository"
)

// NewSQLiteStore returns an in-memory store closed when the test ends.
func NewSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
