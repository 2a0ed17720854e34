package repository

import (
	"context"
	"database/sql"
	"math"
	"testing"

	"cafe-pos/internal/entity"
	"cafe-pos/internal/testutil"
)

func newTestRepos(t *testing.T) (*OrderRepository, *MenuRepository, *TableRepository, *sql.DB) {
	t.Helper()
	db := testutil.OpenStore(t)
	menu := NewMenuRepository(db)
	tables := NewTableRepository(db)
	staff := NewStaffRepository(db)
	orders := NewOrderRepository(db, menu, tables, staff)
	return orders, menu, tables, db
}

func seedMenuItem(t *testing.T, db *sql.DB, name string, price float64, track bool, stock int) int {
	return testutil.SeedMenuItem(t, db, name, price, track, stock)
}

func seedTable(t *testing.T, db *sql.DB, name, status string) int {
	return testutil.SeedTable(t, db, name, status)
}

func seedStaff(t *testing.T, db *sql.DB, name string) int {
	return testutil.SeedStaff(t, db, name)
}

// createTestOrder creates an order at 5% tax with a fixed actor.
func createTestOrder(t *testing.T, orders *OrderRepository, tableID, staffID int, items ...entity.OrderItemRequest) *entity.Order {
	t.Helper()
	order, err := orders.CreateOrder(context.Background(), &entity.OrderRequest{
		TableID: tableID,
		StaffID: staffID,
		Items:   items,
		ActorID: 2,
	}, CreateOptions{TaxRate: 0.05, DeltaPolicy: entity.DeltaPolicyRequested})
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}
	return order
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func tableStatus(t *testing.T, db *sql.DB, id int) string {
	t.Helper()
	var status string
	if err := db.QueryRow(`SELECT status FROM tables WHERE id = ?`, id).Scan(&status); err != nil {
		t.Fatalf("read table status: %v", err)
	}
	return status
}

func stockQuantity(t *testing.T, db *sql.DB, id int) int {
	t.Helper()
	var stock int
	if err := db.QueryRow(`SELECT stock_quantity FROM menu_items WHERE id = ?`, id).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
