package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cafe-pos/internal/entity"
)

// TableRepository owns table reads and the guarded occupancy state
// machine over {available, occupied, reserved}.
type TableRepository struct {
	db *sql.DB
}

func NewTableRepository(db *sql.DB) *TableRepository {
	return &TableRepository{db}
}

func (r *TableRepository) GetTable(ctx context.Context, id int) (*entity.Table, error) {
	return getTable(ctx, r.db, id)
}

func getTable(ctx context.Context, q querier, id int) (*entity.Table, error) {
	t := entity.Table{}
	query := `SELECT id, name, capacity, status FROM tables WHERE id = ?`
	err := q.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Capacity, &t.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TableRepository) GetAllTables(ctx context.Context) ([]entity.Table, error) {
	return r.listTables(ctx, `SELECT id, name, capacity, status FROM tables ORDER BY name`)
}

func (r *TableRepository) GetTablesByStatus(ctx context.Context, status string) ([]entity.Table, error) {
	if !entity.ValidTableStatus(status) {
		return nil, fmt.Errorf("table status %q: %w", status, entity.ErrValidation)
	}
	return r.listTables(ctx, `SELECT id, name, capacity, status FROM tables WHERE status = ? ORDER BY name`, status)
}

func (r *TableRepository) listTables(ctx context.Context, query string, args ...interface{}) ([]entity.Table, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []entity.Table
	for rows.Next() {
		var t entity.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.Status); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// TablesWithOrders returns the table board: every table joined with
// its open (not completed) order, if any.
func (r *TableRepository) TablesWithOrders(ctx context.Context) ([]entity.Table, error) {
	query := `
		SELECT t.id, t.name, t.capacity, t.status, COALESCE(o.id, 0), COALESCE(o.status, '')
		FROM tables t
		LEFT JOIN orders o ON o.table_id = t.id AND o.status != ?
		ORDER BY t.name`

	rows, err := r.db.QueryContext(ctx, query, entity.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []entity.Table
	for rows.Next() {
		var t entity.Table
		err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.Status, &t.OrderID, &t.OrderStatus)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// UpdateStatus applies a guarded occupancy transition outside any
// enclosing transaction (manual reservation management).
func (r *TableRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	return updateTableStatus(ctx, r.db, id, status)
}

// UpdateStatusTx applies a guarded occupancy transition inside the
// caller's transaction.
func (r *TableRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int, status string) error {
	return updateTableStatus(ctx, tx, id, status)
}

// updateTableStatus enforces the transition table in SQL: the update
// only matches when the current status is an allowed predecessor of
// the target. Zero affected rows is either an unknown table or a
// rejected transition.
func updateTableStatus(ctx context.Context, q querier, id int, status string) error {
	if !entity.ValidTableStatus(status) {
		return fmt.Errorf("table status %q: %w", status, entity.ErrValidation)
	}

	froms := entity.TableTransitionFrom(status)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(froms)), ", ")
	query := fmt.Sprintf(`UPDATE tables SET status = ? WHERE id = ? AND status IN (%s)`, placeholders)

	args := []interface{}{status, id}
	for _, from := range froms {
		args = append(args, from)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var current string
	err = q.QueryRowContext(ctx, `SELECT status FROM tables WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("table %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("table %d: %s -> %s: %w", id, current, status, entity.ErrInvalidTransition)
}
