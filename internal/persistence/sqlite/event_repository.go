package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite. All
// aggregate writes run inside one transaction so a missing reference in a
// nested collection leaves nothing behind.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

// CreateEvent inserts the event row, its packing entries and its meal
// options atomically. Each equipment and meal reference is checked inside
// the transaction; a missing one aborts with *MissingReferenceError and the
// rollback removes everything already inserted.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, name, description, start_date, end_date, created_by_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID,
			event.Name,
			nullString(event.Description),
			event.StartDate,
			event.EndDate,
			event.CreatedByID,
			event.CreatedAt.Format(time.RFC3339),
			event.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return mapSQLError(err)
		}

		if err := insertPackingRows(ctx, tx, event.ID, event.PackingEquipments); err != nil {
			return err
		}
		return insertMealOptionRows(ctx, tx, event.ID, event.MealOptions)
	})
}

// UpdateEvent patches the base row and, when replacePacking is set, replaces
// the entire packing list in the same transaction.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event, replacePacking bool) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE events SET name = ?, description = ?, start_date = ?, end_date = ?, updated_at = ?
			WHERE id = ?`,
			event.Name,
			nullString(event.Description),
			event.StartDate,
			event.EndDate,
			event.UpdatedAt.Format(time.RFC3339),
			event.ID,
		)
		if err != nil {
			return mapSQLError(err)
		}
		if err := requireRowAffected(result); err != nil {
			return err
		}

		if !replacePacking {
			return nil
		}

		// Full replace, not a merge: clients resend the complete list.
		if _, err := tx.ExecContext(ctx, `DELETE FROM packing_equipments WHERE event_id = ?`, event.ID); err != nil {
			return mapSQLError(err)
		}
		return insertPackingRows(ctx, tx, event.ID, event.PackingEquipments)
	})
}

// GetEvent loads an event with its packing entries (equipment embedded) and
// meal options.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	event, err := r.scanEventRow(ctx, id)
	if err != nil {
		return persistence.Event{}, err
	}

	if event.PackingEquipments, err = r.loadPacking(ctx, id); err != nil {
		return persistence.Event{}, err
	}
	if event.MealOptions, err = r.loadMealOptions(ctx, id); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

// ListEvents returns a page of events ordered by start date plus the total
// count. Dependent collections are loaded per event.
func (r *EventRepository) ListEvents(ctx context.Context, page persistence.Page) ([]persistence.Event, int, error) {
	page = page.Clamp()

	var count int
	if err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return nil, 0, mapSQLError(err)
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, description, start_date, end_date, created_by_id, created_at, updated_at
		FROM events ORDER BY start_date, id LIMIT ? OFFSET ?`, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, mapSQLError(err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}

	for i := range events {
		if events[i].PackingEquipments, err = r.loadPacking(ctx, events[i].ID); err != nil {
			return nil, 0, err
		}
		if events[i].MealOptions, err = r.loadMealOptions(ctx, events[i].ID); err != nil {
			return nil, 0, err
		}
	}

	return events, count, nil
}

// ListEventsByIDs returns the events matching the provided ids, ordered by
// start date. Unknown ids are skipped.
func (r *EventRepository) ListEventsByIDs(ctx context.Context, ids []string) ([]persistence.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, description, start_date, end_date, created_by_id, created_at, updated_at
		FROM events WHERE id IN (`+placeholders+`) ORDER BY start_date, id`, args...)
	if err != nil {
		return nil, mapSQLError(err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}

	for i := range events {
		if events[i].PackingEquipments, err = r.loadPacking(ctx, events[i].ID); err != nil {
			return nil, err
		}
		if events[i].MealOptions, err = r.loadMealOptions(ctx, events[i].ID); err != nil {
			return nil, err
		}
	}

	return events, nil
}

// DeleteEvent removes the event and every dependent row atomically. Meal
// choices go first because their attendance and option parents are removed
// by the cascades triggered below.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE id = ?`, id).Scan(&exists); err != nil {
			return mapSQLError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		statements := []string{
			`DELETE FROM meal_choices WHERE attendance_id IN (SELECT id FROM attendances WHERE event_id = ?)`,
			`DELETE FROM meal_choices WHERE event_meal_option_id IN (SELECT id FROM event_meal_options WHERE event_id = ?)`,
			`DELETE FROM event_meal_options WHERE event_id = ?`,
			`DELETE FROM packing_equipments WHERE event_id = ?`,
			`DELETE FROM attendances WHERE event_id = ?`,
			`DELETE FROM events WHERE id = ?`,
		}
		for _, statement := range statements {
			if _, err := tx.ExecContext(ctx, statement, id); err != nil {
				return mapSQLError(err)
			}
		}
		return nil
	})
}

func insertPackingRows(ctx context.Context, tx *sql.Tx, eventID string, entries []persistence.PackingEquipment) error {
	for _, entry := range entries {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipments WHERE id = ?`, entry.EquipmentID).Scan(&exists); err != nil {
			return mapSQLError(err)
		}
		if exists == 0 {
			return &persistence.MissingReferenceError{Entity: "equipment", ID: entry.EquipmentID}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO packing_equipments (id, event_id, equipment_id, quantity, required, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			entry.ID, eventID, entry.EquipmentID, entry.Quantity, entry.Required, nullString(entry.Notes),
		)
		if err != nil {
			return mapSQLError(err)
		}
	}
	return nil
}

func insertMealOptionRows(ctx context.Context, tx *sql.Tx, eventID string, options []persistence.EventMealOption) error {
	for _, option := range options {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM meals WHERE id = ?`, option.MealID).Scan(&exists); err != nil {
			return mapSQLError(err)
		}
		if exists == 0 {
			return &persistence.MissingReferenceError{Entity: "meal", ID: option.MealID}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO event_meal_options (id, event_id, meal_id, meal_type, day, max_quantity)
			VALUES (?, ?, ?, ?, ?, ?)`,
			option.ID, eventID, option.MealID, string(option.MealType), option.Day, nullInt(option.MaxQuantity),
		)
		if err != nil {
			return mapSQLError(err)
		}
	}
	return nil
}

func (r *EventRepository) scanEventRow(ctx context.Context, id string) (persistence.Event, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, description, start_date, end_date, created_by_id, created_at, updated_at
		FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event       persistence.Event
		description sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&event.ID,
		&event.Name,
		&description,
		&event.StartDate,
		&event.EndDate,
		&event.CreatedByID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Event{}, mapSQLError(err)
	}

	event.Description = fromNullString(description)
	event.CreatedAt = parseTimestamp(createdAt)
	event.UpdatedAt = parseTimestamp(updatedAt)
	return event, nil
}

func collectEvents(rows *sql.Rows) ([]persistence.Event, error) {
	defer rows.Close()

	events := make([]persistence.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return events, nil
}

func (r *EventRepository) loadPacking(ctx context.Context, eventID string) ([]persistence.PackingEquipment, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT p.id, p.event_id, p.equipment_id, p.quantity, p.required, p.notes,
		       e.id, e.title, e.description, e.category, e.owner_id, e.created_at, e.updated_at
		FROM packing_equipments p
		JOIN equipments e ON e.id = p.equipment_id
		WHERE p.event_id = ?
		ORDER BY e.title, p.id`, eventID)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	entries := make([]persistence.PackingEquipment, 0)
	for rows.Next() {
		entry, err := scanPackingJoinRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return entries, nil
}

func scanPackingJoinRow(row rowScanner) (persistence.PackingEquipment, error) {
	var (
		entry         persistence.PackingEquipment
		notes         sql.NullString
		eqDescription sql.NullString
		eqCategory    sql.NullString
		eqCreatedAt   string
		eqUpdatedAt   string
	)
	err := row.Scan(
		&entry.ID,
		&entry.EventID,
		&entry.EquipmentID,
		&entry.Quantity,
		&entry.Required,
		&notes,
		&entry.Equipment.ID,
		&entry.Equipment.Title,
		&eqDescription,
		&eqCategory,
		&entry.Equipment.OwnerID,
		&eqCreatedAt,
		&eqUpdatedAt,
	)
	if err != nil {
		return persistence.PackingEquipment{}, mapSQLError(err)
	}

	entry.Notes = fromNullString(notes)
	entry.Equipment.Description = fromNullString(eqDescription)
	entry.Equipment.Category = fromNullString(eqCategory)
	entry.Equipment.CreatedAt = parseTimestamp(eqCreatedAt)
	entry.Equipment.UpdatedAt = parseTimestamp(eqUpdatedAt)
	return entry, nil
}

func (r *EventRepository) loadMealOptions(ctx context.Context, eventID string) ([]persistence.EventMealOption, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, event_id, meal_id, meal_type, day, max_quantity
		FROM event_meal_options WHERE event_id = ? ORDER BY day, meal_type, id`, eventID)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	options := make([]persistence.EventMealOption, 0)
	for rows.Next() {
		var (
			option      persistence.EventMealOption
			mealType    string
			maxQuantity sql.NullInt64
		)
		if err := rows.Scan(&option.ID, &option.EventID, &option.MealID, &mealType, &option.Day, &maxQuantity); err != nil {
			return nil, mapSQLError(err)
		}
		option.MealType = persistence.MealType(mealType)
		option.MaxQuantity = fromNullInt(maxQuantity)
		options = append(options, option)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return options, nil
}
