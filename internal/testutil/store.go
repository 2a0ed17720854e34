// Package testutil provides the SQLite-backed test store shared by
// repository and service tests. The schema mirrors the production
// MySQL schema; the repositories only use portable SQL, so they run
// unchanged against it.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id TEXT NOT NULL UNIQUE,
	table_id INTEGER NOT NULL,
	staff_id INTEGER NOT NULL,
	status TEXT NOT NULL,
	subtotal REAL NOT NULL,
	tax REAL NOT NULL,
	tip REAL NOT NULL DEFAULT 0,
	total REAL NOT NULL,
	payment_method TEXT NOT NULL,
	paid BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE order_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL,
	menu_item_id INTEGER NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	notes TEXT,
	subtotal REAL NOT NULL
);

CREATE TABLE menu_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	category_id INTEGER NOT NULL DEFAULT 0,
	price REAL NOT NULL,
	track_inventory BOOLEAN NOT NULL DEFAULT 0,
	stock_quantity INTEGER NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE inventory_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	menu_item_id INTEGER NOT NULL,
	quantity_change INTEGER NOT NULL,
	reason TEXT NOT NULL,
	previous_stock INTEGER NOT NULL,
	new_stock INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE tables (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	capacity INTEGER NOT NULL DEFAULT 2,
	status TEXT NOT NULL DEFAULT 'available'
);

CREATE TABLE staff (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'waiter',
	active BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE order_counter (value INTEGER NOT NULL);
INSERT INTO order_counter (value) VALUES (5181);
`

// OpenStore opens a file-backed SQLite store with the test schema
// applied. The store is closed when the test finishes.
func OpenStore(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("apply test schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedMenuItem inserts a menu item and returns its id.
func SeedMenuItem(t *testing.T, db *sql.DB, name string, price float64, track bool, stock int) int {
	t.Helper()
	res, err := db.Exec(`INSERT INTO menu_items (name, price, track_inventory, stock_quantity) VALUES (?, ?, ?, ?)`, name, price, track, stock)
	if err != nil {
		t.Fatalf("seed menu item: %v", err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}

// SeedTable inserts a table in the given status and returns its id.
func SeedTable(t *testing.T, db *sql.DB, name, status string) int {
	t.Helper()
	res, err := db.Exec(`INSERT INTO tables (name, capacity, status) VALUES (?, 4, ?)`, name, status)
	if err != nil {
		t.Fatalf("seed table: %v", err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}

// SeedStaff inserts a staff member and returns their id.
func SeedStaff(t *testing.T, db *sql.DB, name string) int {
	t.Helper()
	res, err := db.Exec(`INSERT INTO staff (name) VALUES (?)`, name)
	if err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	id, _ := res.LastInsertId()
	return int(id)
}
