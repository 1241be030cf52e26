package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// EquipmentRepository implements persistence.EquipmentRepository using SQLite.
type EquipmentRepository struct {
	pool *ConnectionPool
}

// NewEquipmentRepository creates a new SQLite equipment repository.
func NewEquipmentRepository(pool *ConnectionPool) *EquipmentRepository {
	return &EquipmentRepository{pool: pool}
}

// CreateEquipment inserts a new catalog entry.
func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment persistence.Equipment) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO equipments (id, title, description, category, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		equipment.ID,
		equipment.Title,
		nullString(equipment.Description),
		nullString(equipment.Category),
		equipment.OwnerID,
		equipment.CreatedAt.Format(time.RFC3339),
		equipment.UpdatedAt.Format(time.RFC3339),
	)
	return mapSQLError(err)
}

// UpdateEquipment updates an existing catalog entry.
func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, equipment persistence.Equipment) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE equipments SET title = ?, description = ?, category = ?, updated_at = ?
		WHERE id = ?`,
		equipment.Title,
		nullString(equipment.Description),
		nullString(equipment.Category),
		equipment.UpdatedAt.Format(time.RFC3339),
		equipment.ID,
	)
	if err != nil {
		return mapSQLError(err)
	}
	return requireRowAffected(result)
}

// GetEquipment retrieves a catalog entry by id.
func (r *EquipmentRepository) GetEquipment(ctx context.Context, id string) (persistence.Equipment, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, title, description, category, owner_id, created_at, updated_at
		FROM equipments WHERE id = ?`, id)
	return scanEquipment(row)
}

// ListEquipments returns a page of catalog entries ordered by title plus the
// total count.
func (r *EquipmentRepository) ListEquipments(ctx context.Context, page persistence.Page) ([]persistence.Equipment, int, error) {
	page = page.Clamp()

	var count int
	if err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipments`).Scan(&count); err != nil {
		return nil, 0, mapSQLError(err)
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, title, description, category, owner_id, created_at, updated_at
		FROM equipments ORDER BY title, id LIMIT ? OFFSET ?`, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, mapSQLError(err)
	}
	defer rows.Close()

	equipments := make([]persistence.Equipment, 0)
	for rows.Next() {
		equipment, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		equipments = append(equipments, equipment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapSQLError(err)
	}

	return equipments, count, nil
}

// DeleteEquipment removes a catalog entry. Entries still referenced by a
// packing row are protected; the caller receives ErrReferenced and the row
// survives.
func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipments WHERE id = ?`, id).Scan(&exists); err != nil {
			return mapSQLError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		var references int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM packing_equipments WHERE equipment_id = ?`, id).Scan(&references); err != nil {
			return mapSQLError(err)
		}
		if references > 0 {
			return persistence.ErrReferenced
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM equipments WHERE id = ?`, id)
		return mapSQLError(err)
	})
}

// CreatePackingEquipment adds a single packing entry to an event. The
// equipment reference is validated inside the transaction; the unique
// (event, equipment) index rejects duplicates.
func (r *EquipmentRepository) CreatePackingEquipment(ctx context.Context, packing persistence.PackingEquipment) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipments WHERE id = ?`, packing.EquipmentID).Scan(&exists); err != nil {
			return mapSQLError(err)
		}
		if exists == 0 {
			return &persistence.MissingReferenceError{Entity: "equipment", ID: packing.EquipmentID}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO packing_equipments (id, event_id, equipment_id, quantity, required, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			packing.ID, packing.EventID, packing.EquipmentID, packing.Quantity, packing.Required, nullString(packing.Notes),
		)
		return mapSQLError(err)
	})
}

// ListPackingForEvent returns a page of packing entries for an event with
// their equipment embedded, plus the total count.
func (r *EquipmentRepository) ListPackingForEvent(ctx context.Context, eventID string, page persistence.Page) ([]persistence.PackingEquipment, int, error) {
	page = page.Clamp()

	var count int
	if err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM packing_equipments WHERE event_id = ?`, eventID).Scan(&count); err != nil {
		return nil, 0, mapSQLError(err)
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT p.id, p.event_id, p.equipment_id, p.quantity, p.required, p.notes,
		       e.id, e.title, e.description, e.category, e.owner_id, e.created_at, e.updated_at
		FROM packing_equipments p
		JOIN equipments e ON e.id = p.equipment_id
		WHERE p.event_id = ?
		ORDER BY e.title, p.id LIMIT ? OFFSET ?`, eventID, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, mapSQLError(err)
	}
	defer rows.Close()

	entries := make([]persistence.PackingEquipment, 0)
	for rows.Next() {
		entry, err := scanPackingJoinRow(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapSQLError(err)
	}

	return entries, count, nil
}

func scanEquipment(row rowScanner) (persistence.Equipment, error) {
	var (
		equipment   persistence.Equipment
		description sql.NullString
		category    sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&equipment.ID,
		&equipment.Title,
		&description,
		&category,
		&equipment.OwnerID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Equipment{}, mapSQLError(err)
	}

	equipment.Description = fromNullString(description)
	equipment.Category = fromNullString(category)
	equipment.CreatedAt = parseTimestamp(createdAt)
	equipment.UpdatedAt = parseTimestamp(updatedAt)
	return equipment, nil
}
