package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe-pos/internal/entity"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same queries
// can run inside an enclosing order transaction or on their own.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// stockRetries bounds the optimistic conditional-update loop.
const stockRetries = 5

// MenuRepository owns menu item reads, stock mutation and the
// append-only inventory history ledger.
type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db}
}

func (r *MenuRepository) GetMenuItem(ctx context.Context, id int) (*entity.MenuItem, error) {
	return getMenuItem(ctx, r.db, id)
}

func getMenuItem(ctx context.Context, q querier, id int) (*entity.MenuItem, error) {
	item := entity.MenuItem{}
	query := `SELECT id, name, category_id, price, track_inventory, stock_quantity, active FROM menu_items WHERE id = ?`
	err := q.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Name, &item.CategoryID, &item.Price, &item.TrackInventory, &item.StockQuantity, &item.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("menu item %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// StockAdjustment describes one stock mutation. Delta is signed:
// negative for order decrements and waste, positive for restocks.
type StockAdjustment struct {
	MenuItemID int
	Delta      int
	Reason     string
	ActorID    int

	// EnableTracking switches track_inventory on, which direct
	// adjustments do and order decrements do not.
	EnableTracking bool

	// DeltaPolicy picks which delta the ledger row records when a
	// clamped decrement diverges from the request
	// (entity.DeltaPolicyRequested or entity.DeltaPolicyApplied).
	DeltaPolicy string
}

// AdjustStock applies adj in its own transaction and returns the
// updated menu item.
func (r *MenuRepository) AdjustStock(ctx context.Context, adj StockAdjustment) (*entity.MenuItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if _, err := r.AdjustStockTx(ctx, tx, adj); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetMenuItem(ctx, adj.MenuItemID)
}

// AdjustStockTx applies adj inside the caller's transaction and
// returns the resulting stock level. The new stock is clamped at zero;
// exactly one inventory_history row is written per call.
//
// The update is conditional on the stock value read in this attempt,
// so two concurrent mutations can never both apply against the same
// previous value. Losing the race retries with a fresh read.
func (r *MenuRepository) AdjustStockTx(ctx context.Context, tx *sql.Tx, adj StockAdjustment) (int, error) {
	for attempt := 0; attempt < stockRetries; attempt++ {
		var prev int
		var tracked bool
		err := tx.QueryRowContext(ctx, `SELECT stock_quantity, track_inventory FROM menu_items WHERE id = ?`, adj.MenuItemID).Scan(&prev, &tracked)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("menu item %d: %w", adj.MenuItemID, entity.ErrNotFound)
		}
		if err != nil {
			return 0, err
		}

		newStock := prev + adj.Delta
		if newStock < 0 {
			newStock = 0
		}

		var res sql.Result
		if adj.EnableTracking {
			res, err = tx.ExecContext(ctx, `UPDATE menu_items SET stock_quantity = ?, track_inventory = 1 WHERE id = ? AND stock_quantity = ?`,
				newStock, adj.MenuItemID, prev)
		} else {
			res, err = tx.ExecContext(ctx, `UPDATE menu_items SET stock_quantity = ? WHERE id = ? AND stock_quantity = ?`,
				newStock, adj.MenuItemID, prev)
		}
		if err != nil {
			return 0, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if affected == 0 {
			// Lost the race, re-read and try again.
			continue
		}

		change := adj.Delta
		if adj.DeltaPolicy == entity.DeltaPolicyApplied {
			change = newStock - prev
		}

		historyQuery := `INSERT INTO inventory_history (menu_item_id, quantity_change, reason, previous_stock, new_stock, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
		_, err = tx.ExecContext(ctx, historyQuery, adj.MenuItemID, change, adj.Reason, prev, newStock, adj.ActorID, time.Now())
		if err != nil {
			return 0, err
		}

		return newStock, nil
	}

	return 0, fmt.Errorf("menu item %d: stock contention after %d attempts: %w", adj.MenuItemID, stockRetries, entity.ErrInventory)
}

// InventoryHistory lists ledger rows newest first. A menuItemID of 0
// lists all items.
func (r *MenuRepository) InventoryHistory(ctx context.Context, menuItemID int) ([]entity.InventoryHistoryEntry, error) {
	query := `
		SELECT ih.id, ih.menu_item_id, ih.quantity_change, ih.reason, ih.previous_stock, ih.new_stock, ih.user_id, ih.created_at, mi.name
		FROM inventory_history ih
		JOIN menu_items mi ON ih.menu_item_id = mi.id`
	var args []interface{}
	if menuItemID > 0 {
		query += ` WHERE ih.menu_item_id = ?`
		args = append(args, menuItemID)
	}
	query += ` ORDER BY ih.created_at DESC, ih.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []entity.InventoryHistoryEntry
	for rows.Next() {
		var e entity.InventoryHistoryEntry
		err := rows.Scan(&e.ID, &e.MenuItemID, &e.QuantityChange, &e.Reason, &e.PreviousStock, &e.NewStock, &e.UserID, &e.CreatedAt, &e.MenuItemName)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
