package migrations

import (
	"database/sql"
	"time"
)

// orderCounterSeed is the value the display-id sequence starts after;
// the first order issued is #ORD-5182.
const orderCounterSeed = 5181

func execWithRetry(db *sql.DB, query string, retries int) error {
	_, err := db.Exec(query)
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(1 * time.Second)
		_, err = db.Exec(query)
	}
	return err
}

// AutoMigrateOrders creates the orders table if it does not exist.
func AutoMigrateOrders(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id VARCHAR(20) NOT NULL UNIQUE,
			table_id INT NOT NULL,
			staff_id INT NOT NULL,
			status VARCHAR(20) NOT NULL,
			subtotal DOUBLE NOT NULL,
			tax DOUBLE NOT NULL,
			tip DOUBLE NOT NULL DEFAULT 0,
			total DOUBLE NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateOrderItems creates the order_items table if it does not exist.
func AutoMigrateOrderItems(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS order_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			menu_item_id INT NOT NULL,
			quantity INT NOT NULL,
			price DOUBLE NOT NULL,
			notes TEXT,
			subtotal DOUBLE NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateMenuItems creates the menu_items table if it does not exist.
func AutoMigrateMenuItems(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS menu_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			category_id INT NOT NULL DEFAULT 0,
			price DOUBLE NOT NULL,
			track_inventory BOOLEAN NOT NULL DEFAULT FALSE,
			stock_quantity INT NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateInventoryHistory creates the append-only stock ledger.
func AutoMigrateInventoryHistory(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS inventory_history (
			id INT AUTO_INCREMENT PRIMARY KEY,
			menu_item_id INT NOT NULL,
			quantity_change INT NOT NULL,
			reason VARCHAR(255) NOT NULL,
			previous_stock INT NOT NULL,
			new_stock INT NOT NULL,
			user_id INT NOT NULL,
			created_at DATETIME NOT NULL
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateTables creates the tables table if it does not exist.
func AutoMigrateTables(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS tables (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			capacity INT NOT NULL DEFAULT 2,
			status VARCHAR(20) NOT NULL DEFAULT 'available'
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateStaff creates the staff table if it does not exist.
func AutoMigrateStaff(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS staff (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'waiter',
			active BOOLEAN NOT NULL DEFAULT TRUE
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateOrderCounter creates and seeds the single-row display-id
// sequence.
func AutoMigrateOrderCounter(retries int, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS order_counter (
			value INT NOT NULL
		);
	`
	if err := execWithRetry(db, query, retries); err != nil {
		return err
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM order_counter`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		_, err := db.Exec(`INSERT INTO order_counter (value) VALUES (?)`, orderCounterSeed)
		return err
	}
	return nil
}

// AutoMigrateAll applies every migration in dependency order.
func AutoMigrateAll(retries int, db *sql.DB) error {
	steps := []func(int, *sql.DB) error{
		AutoMigrateOrders,
		AutoMigrateOrderItems,
		AutoMigrateMenuItems,
		AutoMigrateInventoryHistory,
		AutoMigrateTables,
		AutoMigrateStaff,
		AutoMigrateOrderCounter,
	}
	for _, step := range steps {
		if err := step(retries, db); err != nil {
			return err
		}
	}
	return nil
}
