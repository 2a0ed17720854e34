package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cafe-pos/internal/entity"
)

// OrderRepository orchestrates the order lifecycle transaction: order
// header, line items, stock ledger and table occupancy move together
// or not at all.
type OrderRepository struct {
	db     *sql.DB
	menu   *MenuRepository
	tables *TableRepository
	staff  *StaffRepository
}

func NewOrderRepository(db *sql.DB, menu *MenuRepository, tables *TableRepository, staff *StaffRepository) *OrderRepository {
	return &OrderRepository{db: db, menu: menu, tables: tables, staff: staff}
}

// CreateOptions carry the policy knobs the transaction needs.
type CreateOptions struct {
	TaxRate     float64
	DeltaPolicy string
}

// CreateOrder runs the whole creation sequence in one transaction:
// display id, header, line items with price snapshots, one clamped
// stock decrement plus ledger row per tracked item, and the table
// transition to occupied. Any failure rolls the whole thing back.
func (r *OrderRepository) CreateOrder(ctx context.Context, req *entity.OrderRequest, opts CreateOptions) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	displayID, err := nextOrderID(ctx, tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Resolve every line against the menu at transaction time. The
	// price snapshot comes from the row, not from the caller.
	var subtotal float64
	items := make([]entity.OrderItem, 0, len(req.Items))
	type decrement struct {
		menuItemID int
		quantity   int
	}
	var decrements []decrement

	for _, line := range req.Items {
		var price float64
		var tracked bool
		err := tx.QueryRowContext(ctx, `SELECT price, track_inventory FROM menu_items WHERE id = ?`, line.MenuItemID).Scan(&price, &tracked)
		if errors.Is(err, sql.ErrNoRows) {
			tx.Rollback()
			return nil, fmt.Errorf("menu item %d: %w", line.MenuItemID, entity.ErrNotFound)
		}
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		item := entity.OrderItem{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			Price:      price,
			Notes:      line.Notes,
			Subtotal:   price * float64(line.Quantity),
		}
		subtotal += item.Subtotal
		items = append(items, item)

		if tracked {
			decrements = append(decrements, decrement{line.MenuItemID, line.Quantity})
		}
	}

	tax := subtotal * opts.TaxRate
	total := subtotal + tax + req.Tip

	status := req.Status
	if status == "" {
		status = entity.DefaultOrderStatus
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = entity.DefaultPaymentMethod
	}
	createdAt := time.Now()

	orderQuery := `INSERT INTO orders (order_id, table_id, staff_id, status, subtotal, tax, tip, total, payment_method, paid, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery, displayID, req.TableID, req.StaffID, status, subtotal, tax, req.Tip, total, paymentMethod, false, createdAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Insert line items with batch
	itemQuery := `
		INSERT INTO order_items (order_id, menu_item_id, quantity, price, notes, subtotal)
		VALUES `

	var values []interface{}
	for i := range items {
		items[i].OrderID = int(orderID)
		itemQuery += "(?, ?, ?, ?, ?, ?),"
		values = append(values, orderID, items[i].MenuItemID, items[i].Quantity, items[i].Price, items[i].Notes, items[i].Subtotal)
	}
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, d := range decrements {
		_, err := r.menu.AdjustStockTx(ctx, tx, StockAdjustment{
			MenuItemID:  d.menuItemID,
			Delta:       -d.quantity,
			Reason:      fmt.Sprintf("Order %s", displayID),
			ActorID:     req.ActorID,
			DeltaPolicy: opts.DeltaPolicy,
		})
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := r.tables.UpdateStatusTx(ctx, tx, req.TableID, entity.TableStatusOccupied); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &entity.Order{
		ID:            int(orderID),
		OrderID:       displayID,
		TableID:       req.TableID,
		StaffID:       req.StaffID,
		Status:        status,
		Subtotal:      subtotal,
		Tax:           tax,
		Tip:           req.Tip,
		Total:         total,
		PaymentMethod: paymentMethod,
		CreatedAt:     createdAt,
		Items:         items,
	}, nil
}

// UpdateOrder applies the restricted field set. A tip change
// recomputes total as subtotal + tax + tip. Completing or paying the
// order frees its table in the same transaction. Reports whether a
// row was modified.
func (r *OrderRepository) UpdateOrder(ctx context.Context, id int, upd entity.OrderUpdate) (bool, error) {
	if upd.IsEmpty() {
		return false, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	var subtotal, tax float64
	var tableID int
	err = tx.QueryRowContext(ctx, `SELECT subtotal, tax, table_id FROM orders WHERE id = ?`, id).Scan(&subtotal, &tax, &tableID)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return false, fmt.Errorf("order %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		tx.Rollback()
		return false, err
	}

	var setParts []string
	var args []interface{}
	if upd.Status != nil {
		setParts = append(setParts, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.PaymentMethod != nil {
		setParts = append(setParts, "payment_method = ?")
		args = append(args, *upd.PaymentMethod)
	}
	if upd.Paid != nil {
		setParts = append(setParts, "paid = ?")
		args = append(args, *upd.Paid)
	}
	if upd.Tip != nil {
		setParts = append(setParts, "tip = ?", "total = ?")
		args = append(args, *upd.Tip, subtotal+tax+*upd.Tip)
	}

	query := `UPDATE orders SET ` + strings.Join(setParts, ", ") + ` WHERE id = ?`
	args = append(args, id)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return false, err
	}

	// Completion or payment ends the order's claim on the table.
	completed := upd.Status != nil && *upd.Status == entity.OrderStatusCompleted
	paid := upd.Paid != nil && *upd.Paid
	if completed || paid {
		if err := r.freeTableTx(ctx, tx, tableID); err != nil {
			tx.Rollback()
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return affected > 0, nil
}

// DeleteOrder removes the order's line items and header in one
// transaction and frees the table. When restock is set, tracked line
// quantities are returned to stock through the ledger first.
func (r *OrderRepository) DeleteOrder(ctx context.Context, id int, actorID int, restock bool, deltaPolicy string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	var tableID int
	var displayID string
	err = tx.QueryRowContext(ctx, `SELECT table_id, order_id FROM orders WHERE id = ?`, id).Scan(&tableID, &displayID)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return false, fmt.Errorf("order %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		tx.Rollback()
		return false, err
	}

	if restock {
		if err := r.restockItemsTx(ctx, tx, id, displayID, actorID, deltaPolicy); err != nil {
			tx.Rollback()
			return false, err
		}
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	if err := r.freeTableTx(ctx, tx, tableID); err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

// restockItemsTx returns the deleted order's tracked quantities to
// stock, one ledger row per line item.
func (r *OrderRepository) restockItemsTx(ctx context.Context, tx *sql.Tx, orderID int, displayID string, actorID int, deltaPolicy string) error {
	query := `
		SELECT oi.menu_item_id, oi.quantity
		FROM order_items oi
		JOIN menu_items mi ON oi.menu_item_id = mi.id
		WHERE oi.order_id = ? AND mi.track_inventory = 1`

	rows, err := tx.QueryContext(ctx, query, orderID)
	if err != nil {
		return err
	}

	type line struct {
		menuItemID int
		quantity   int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.menuItemID, &l.quantity); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, l := range lines {
		_, err := r.menu.AdjustStockTx(ctx, tx, StockAdjustment{
			MenuItemID:  l.menuItemID,
			Delta:       l.quantity,
			Reason:      fmt.Sprintf("Order %s deleted", displayID),
			ActorID:     actorID,
			DeltaPolicy: deltaPolicy,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// freeTableTx releases a table at the end of an order's lifecycle.
// Releasing is idempotent: if the table already left occupied (order
// completed, then paid later) the rejected transition is not an error.
func (r *OrderRepository) freeTableTx(ctx context.Context, tx *sql.Tx, tableID int) error {
	err := r.tables.UpdateStatusTx(ctx, tx, tableID, entity.TableStatusAvailable)
	if errors.Is(err, entity.ErrInvalidTransition) {
		return nil
	}
	return err
}

// nextOrderID issues the next display identifier inside the order's
// transaction. The counter row's update lock serializes concurrent
// creators until commit, so suffixes are unique and monotonic.
func nextOrderID(ctx context.Context, tx *sql.Tx) (string, error) {
	if _, err := tx.ExecContext(ctx, `UPDATE order_counter SET value = value + 1`); err != nil {
		return "", err
	}

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT value FROM order_counter`).Scan(&n); err != nil {
		return "", err
	}

	return fmt.Sprintf("#ORD-%d", n), nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id int) (*entity.Order, error) {
	o := entity.Order{}
	query := `SELECT id, order_id, table_id, staff_id, status, subtotal, tax, tip, total, payment_method, paid, created_at FROM orders WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.OrderID, &o.TableID, &o.StaffID, &o.Status, &o.Subtotal, &o.Tax, &o.Tip, &o.Total, &o.PaymentMethod, &o.Paid, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderWithDetails returns the read-only order aggregate: header,
// line items with menu item names, table and staff.
func (r *OrderRepository) GetOrderWithDetails(ctx context.Context, id int) (*entity.OrderDetails, error) {
	order, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	itemQuery := `
		SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price, oi.notes, oi.subtotal, mi.name
		FROM order_items oi
		JOIN menu_items mi ON oi.menu_item_id = mi.id
		WHERE oi.order_id = ?`

	rows, err := r.db.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity, &item.Price, &item.Notes, &item.Subtotal, &item.MenuItemName)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	details := &entity.OrderDetails{Order: *order}

	table, err := r.tables.GetTable(ctx, order.TableID)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}
	details.Table = table

	staff, err := r.staff.GetStaff(ctx, order.StaffID)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}
	details.Staff = staff

	return details, nil
}

func (r *OrderRepository) GetAllOrders(ctx context.Context) ([]entity.Order, error) {
	query := `
		SELECT o.id, o.order_id, o.table_id, o.staff_id, o.status, o.subtotal, o.tax, o.tip, o.total, o.payment_method, o.paid, o.created_at,
		       t.name, s.name
		FROM orders o
		JOIN tables t ON o.table_id = t.id
		JOIN staff s ON o.staff_id = s.id
		ORDER BY o.created_at DESC, o.id DESC`

	return r.listOrders(ctx, query)
}

func (r *OrderRepository) GetRecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	query := `
		SELECT o.id, o.order_id, o.table_id, o.staff_id, o.status, o.subtotal, o.tax, o.tip, o.total, o.payment_method, o.paid, o.created_at,
		       t.name, s.name
		FROM orders o
		JOIN tables t ON o.table_id = t.id
		JOIN staff s ON o.staff_id = s.id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT ?`

	return r.listOrders(ctx, query, limit)
}

func (r *OrderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		err := rows.Scan(&o.ID, &o.OrderID, &o.TableID, &o.StaffID, &o.Status, &o.Subtotal, &o.Tax, &o.Tip, &o.Total, &o.PaymentMethod, &o.Paid, &o.CreatedAt, &o.TableName, &o.StaffName)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// GetOrderStats aggregates the report counters in one pass per metric.
func (r *OrderRepository) GetOrderStats(ctx context.Context) (*entity.OrderStats, error) {
	stats := entity.OrderStats{}

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders`).Scan(&stats.TotalOrders, &stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE status = ?`, entity.OrderStatusPending).Scan(&stats.PendingOrders)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE status = ?`, entity.OrderStatusCompleted).Scan(&stats.CompletedOrders)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetDailyRevenue sums order totals for one day (YYYY-MM-DD).
func (r *OrderRepository) GetDailyRevenue(ctx context.Context, date string) (float64, error) {
	var revenue float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total), 0) FROM orders WHERE DATE(created_at) = ?`, date).Scan(&revenue)
	if err != nil {
		return 0, err
	}
	return revenue, nil
}
