package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/camp-planner/internal/persistence"
	"github.com/example/camp-planner/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Users       persistence.UserRepository
	Events      persistence.EventRepository
	Equipments  persistence.EquipmentRepository
	Meals       persistence.MealRepository
	Attendances persistence.AttendanceRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness on a temporary file that is
// migrated automatically. Cleanup is registered with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := "file:" + filepath.Join(dir, "campplanner.db")

	pool, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Users:       sqlite.NewUserRepository(pool),
		Events:      sqlite.NewEventRepository(pool),
		Equipments:  sqlite.NewEquipmentRepository(pool),
		Meals:       sqlite.NewMealRepository(pool),
		Attendances: sqlite.NewAttendanceRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
