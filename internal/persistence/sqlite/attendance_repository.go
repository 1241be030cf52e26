package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// AttendanceRepository implements persistence.AttendanceRepository using
// SQLite.
type AttendanceRepository struct {
	pool *ConnectionPool
}

// NewAttendanceRepository creates a new SQLite attendance repository.
func NewAttendanceRepository(pool *ConnectionPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// CreateAttendance inserts a new attendance row. The unique (user, event)
// index converts a lost check-then-insert race into ErrDuplicate.
func (r *AttendanceRepository) CreateAttendance(ctx context.Context, attendance persistence.Attendance) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO attendances (id, user_id, event_id, is_attending)
		VALUES (?, ?, ?, ?)`,
		attendance.ID, attendance.UserID, attendance.EventID, attendance.IsAttending,
	)
	return mapSQLError(err)
}

// UpdateAttendance updates the is_attending flag of an existing row.
func (r *AttendanceRepository) UpdateAttendance(ctx context.Context, attendance persistence.Attendance) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE attendances SET is_attending = ? WHERE id = ?`,
		attendance.IsAttending, attendance.ID,
	)
	if err != nil {
		return mapSQLError(err)
	}
	return requireRowAffected(result)
}

// GetAttendance retrieves an attendance row by id.
func (r *AttendanceRepository) GetAttendance(ctx context.Context, id string) (persistence.Attendance, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, user_id, event_id, is_attending FROM attendances WHERE id = ?`, id)
	return scanAttendance(row)
}

// GetAttendanceByUserEvent retrieves the attendance row binding a user to an
// event.
func (r *AttendanceRepository) GetAttendanceByUserEvent(ctx context.Context, userID, eventID string) (persistence.Attendance, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, user_id, event_id, is_attending FROM attendances
		WHERE user_id = ? AND event_id = ?`, userID, eventID)
	return scanAttendance(row)
}

// ListEventIDsForUser returns a page of event ids the user is attending plus
// the total count of attended events.
func (r *AttendanceRepository) ListEventIDsForUser(ctx context.Context, userID string, page persistence.Page) ([]string, int, error) {
	page = page.Clamp()

	var count int
	if err := r.pool.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendances WHERE user_id = ? AND is_attending = 1`, userID).Scan(&count); err != nil {
		return nil, 0, mapSQLError(err)
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT event_id FROM attendances WHERE user_id = ? AND is_attending = 1
		ORDER BY event_id LIMIT ? OFFSET ?`, userID, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, mapSQLError(err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, 0, mapSQLError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapSQLError(err)
	}
	return ids, count, nil
}

// DeleteAttendance removes an attendance row and, via the cascade, its meal
// choices.
func (r *AttendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM meal_choices WHERE attendance_id = ?`, id); err != nil {
			return mapSQLError(err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM attendances WHERE id = ?`, id)
		if err != nil {
			return mapSQLError(err)
		}
		return requireRowAffected(result)
	})
}

// GetEventMealOption retrieves an event meal option by id.
func (r *AttendanceRepository) GetEventMealOption(ctx context.Context, id string) (persistence.EventMealOption, error) {
	var (
		option      persistence.EventMealOption
		mealType    string
		maxQuantity sql.NullInt64
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, event_id, meal_id, meal_type, day, max_quantity
		FROM event_meal_options WHERE id = ?`, id).
		Scan(&option.ID, &option.EventID, &option.MealID, &mealType, &option.Day, &maxQuantity)
	if err != nil {
		return persistence.EventMealOption{}, mapSQLError(err)
	}
	option.MealType = persistence.MealType(mealType)
	option.MaxQuantity = fromNullInt(maxQuantity)
	return option, nil
}

// CreateMealChoice inserts a new meal choice.
func (r *AttendanceRepository) CreateMealChoice(ctx context.Context, choice persistence.MealChoice) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO meal_choices (id, attendance_id, event_meal_option_id, quantity, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		choice.ID,
		choice.AttendanceID,
		choice.EventMealOptionID,
		choice.Quantity,
		nullString(choice.Notes),
		choice.CreatedAt.Format(time.RFC3339),
		choice.UpdatedAt.Format(time.RFC3339),
	)
	return mapSQLError(err)
}

// UpdateMealChoice updates an existing meal choice.
func (r *AttendanceRepository) UpdateMealChoice(ctx context.Context, choice persistence.MealChoice) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE meal_choices SET event_meal_option_id = ?, quantity = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		choice.EventMealOptionID,
		choice.Quantity,
		nullString(choice.Notes),
		choice.UpdatedAt.Format(time.RFC3339),
		choice.ID,
	)
	if err != nil {
		return mapSQLError(err)
	}
	return requireRowAffected(result)
}

// GetMealChoice retrieves a meal choice by id.
func (r *AttendanceRepository) GetMealChoice(ctx context.Context, id string) (persistence.MealChoice, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, attendance_id, event_meal_option_id, quantity, notes, created_at, updated_at
		FROM meal_choices WHERE id = ?`, id)
	return scanMealChoice(row)
}

// ListMealChoicesForUser returns the caller's meal choices, optionally
// narrowed to one attendance.
func (r *AttendanceRepository) ListMealChoicesForUser(ctx context.Context, userID string, attendanceID string) ([]persistence.MealChoice, error) {
	query := `
		SELECT c.id, c.attendance_id, c.event_meal_option_id, c.quantity, c.notes, c.created_at, c.updated_at
		FROM meal_choices c
		JOIN attendances a ON a.id = c.attendance_id
		WHERE a.user_id = ?`
	args := []any{userID}
	if attendanceID != "" {
		query += ` AND c.attendance_id = ?`
		args = append(args, attendanceID)
	}
	query += ` ORDER BY c.created_at, c.id`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	choices := make([]persistence.MealChoice, 0)
	for rows.Next() {
		choice, err := scanMealChoice(rows)
		if err != nil {
			return nil, err
		}
		choices = append(choices, choice)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return choices, nil
}

// DeleteMealChoice removes a meal choice by id.
func (r *AttendanceRepository) DeleteMealChoice(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM meal_choices WHERE id = ?`, id)
	if err != nil {
		return mapSQLError(err)
	}
	return requireRowAffected(result)
}

// SumChoiceQuantityForOption totals the quantity already selected against an
// option, excluding one choice when excludeChoiceID is non-empty.
func (r *AttendanceRepository) SumChoiceQuantityForOption(ctx context.Context, optionID, excludeChoiceID string) (int, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM meal_choices WHERE event_meal_option_id = ?`
	args := []any{optionID}
	if excludeChoiceID != "" {
		query += ` AND id != ?`
		args = append(args, excludeChoiceID)
	}

	var total int
	if err := r.pool.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, mapSQLError(err)
	}
	return total, nil
}

func scanAttendance(row rowScanner) (persistence.Attendance, error) {
	var attendance persistence.Attendance
	err := row.Scan(&attendance.ID, &attendance.UserID, &attendance.EventID, &attendance.IsAttending)
	if err != nil {
		return persistence.Attendance{}, mapSQLError(err)
	}
	return attendance, nil
}

func scanMealChoice(row rowScanner) (persistence.MealChoice, error) {
	var (
		choice    persistence.MealChoice
		notes     sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&choice.ID,
		&choice.AttendanceID,
		&choice.EventMealOptionID,
		&choice.Quantity,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.MealChoice{}, mapSQLError(err)
	}

	choice.Notes = fromNullString(notes)
	choice.CreatedAt = parseTimestamp(createdAt)
	choice.UpdatedAt = parseTimestamp(updatedAt)
	return choice, nil
}
