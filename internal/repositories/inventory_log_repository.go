package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"sari_pos_backend/internal/models"
)

// InventoryLogRepository defines the interface for the append-only stock ledger.
// Entries are inserted and read, never updated or deleted.
type InventoryLogRepository interface {
	CreateEntry(executor SQLExecutor, entry *models.InventoryLogEntry) (int64, error)
	GetEntries(filters models.InventoryLogFilters) ([]models.InventoryLogEntry, int, error)
}

type inventoryLogRepository struct {
	db *sql.DB
}

// NewInventoryLogRepository creates a new instance of InventoryLogRepository.
func NewInventoryLogRepository(db *sql.DB) InventoryLogRepository {
	return &inventoryLogRepository{db: db}
}

func (r *inventoryLogRepository) CreateEntry(executor SQLExecutor, entry *models.InventoryLogEntry) (int64, error) {
	query := `INSERT INTO inventory_log
	          (product_id, user_id, action_type, quantity_change, previous_quantity, new_quantity,
	           reference_id, reference_type, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		entry.ProductID, entry.UserID, entry.ActionType, entry.QuantityChange,
		entry.PreviousQuantity, entry.NewQuantity,
		entry.ReferenceID, entry.ReferenceType, entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: creating inventory log entry: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

func (r *inventoryLogRepository) GetEntries(filters models.InventoryLogFilters) ([]models.InventoryLogEntry, int, error) {
	entries := []models.InventoryLogEntry{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    il.id, il.product_id, il.user_id, il.action_type, il.quantity_change,
	    il.previous_quantity, il.new_quantity, il.reference_id, il.reference_type, il.notes, il.created_at,
	    p.code as product_code, p.name as product_name,
	    u.username as actor_name,
	    COUNT(*) OVER() AS total_count
	  FROM inventory_log il
	  JOIN products p ON il.product_id = p.id
	  LEFT JOIN users u ON il.user_id = u.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("il.product_id = $%d", argCount))
		args = append(args, *filters.ProductID)
		argCount++
	}
	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("il.user_id = $%d", argCount))
		args = append(args, *filters.UserID)
		argCount++
	}
	if filters.ActionType != nil && *filters.ActionType != "" {
		conditions = append(conditions, fmt.Sprintf("il.action_type = $%d", argCount))
		args = append(args, *filters.ActionType)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY il.created_at DESC, il.id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting inventory log entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.InventoryLogEntry
		var productCode, productName, actorName sql.NullString

		if err := rows.Scan(
			&entry.ID, &entry.ProductID, &entry.UserID, &entry.ActionType, &entry.QuantityChange,
			&entry.PreviousQuantity, &entry.NewQuantity, &entry.ReferenceID, &entry.ReferenceType,
			&entry.Notes, &entry.CreatedAt,
			&productCode, &productName,
			&actorName,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory log entry: %v", ErrDatabaseError, err)
		}

		if productCode.Valid {
			code := productCode.String
			entry.ProductCode = &code
		}
		if productName.Valid {
			name := productName.String
			entry.ProductName = &name
		}
		if actorName.Valid {
			name := actorName.String
			entry.ActorName = &name
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory log entries: %v", ErrDatabaseError, err)
	}

	return entries, totalCount, nil
}
