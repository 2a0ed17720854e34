package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cafe-pos/internal/entity"
)

func TestCreateOrder_TotalsAndOccupancy(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T5", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, true, 3)

	order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 2})

	if !almostEqual(order.Subtotal, 500.00) {
		t.Errorf("subtotal = %v, want 500.00", order.Subtotal)
	}
	if !almostEqual(order.Tax, 25.00) {
		t.Errorf("tax = %v, want 25.00", order.Tax)
	}
	if !almostEqual(order.Total, 525.00) {
		t.Errorf("total = %v, want 525.00", order.Total)
	}
	if !almostEqual(order.Total, order.Subtotal+order.Tax+order.Tip) {
		t.Errorf("total %v != subtotal %v + tax %v + tip %v", order.Total, order.Subtotal, order.Tax, order.Tip)
	}
	if order.OrderID != "#ORD-5182" {
		t.Errorf("display id = %q, want #ORD-5182", order.OrderID)
	}
	if got := tableStatus(t, db, tableID); got != entity.TableStatusOccupied {
		t.Errorf("table status = %q, want occupied", got)
	}
}

func TestCreateOrder_SubtotalIsSumOfItems(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	espresso := seedMenuItem(t, db, "Espresso", 250.00, false, 0)
	croissant := seedMenuItem(t, db, "Croissant", 120.00, false, 0)

	order := createTestOrder(t, orders, tableID, staffID,
		entity.OrderItemRequest{MenuItemID: espresso, Quantity: 2},
		entity.OrderItemRequest{MenuItemID: croissant, Quantity: 3, Notes: "warm"},
	)

	var sum float64
	for _, item := range order.Items {
		if !almostEqual(item.Subtotal, item.Price*float64(item.Quantity)) {
			t.Errorf("item subtotal %v != price %v x qty %d", item.Subtotal, item.Price, item.Quantity)
		}
		sum += item.Subtotal
	}
	if !almostEqual(order.Subtotal, sum) {
		t.Errorf("subtotal %v != sum of items %v", order.Subtotal, sum)
	}
	if !almostEqual(order.Subtotal, 860.00) {
		t.Errorf("subtotal = %v, want 860.00", order.Subtotal)
	}
}

func TestCreateOrder_PriceSnapshot(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, false, 0)

	order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 2})

	// A later menu price change must not touch the historical order.
	if _, err := db.Exec(`UPDATE menu_items SET price = ? WHERE id = ?`, 999.00, itemID); err != nil {
		t.Fatalf("update price: %v", err)
	}

	details, err := orders.GetOrderWithDetails(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderWithDetails() failed: %v", err)
	}
	if len(details.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(details.Items))
	}
	if !almostEqual(details.Items[0].Price, 250.00) {
		t.Errorf("snapshot price = %v, want 250.00", details.Items[0].Price)
	}
	if !almostEqual(details.Subtotal, 500.00) {
		t.Errorf("subtotal = %v, want 500.00", details.Subtotal)
	}
}

func TestCreateOrder_DecrementsTrackedStock(t *testing.T) {
	orders, menu, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	tracked := seedMenuItem(t, db, "Espresso", 250.00, true, 3)
	untracked := seedMenuItem(t, db, "Tea", 90.00, false, 0)

	order := createTestOrder(t, orders, tableID, staffID,
		entity.OrderItemRequest{MenuItemID: tracked, Quantity: 2},
		entity.OrderItemRequest{MenuItemID: untracked, Quantity: 1},
	)

	if got := stockQuantity(t, db, tracked); got != 1 {
		t.Errorf("tracked stock = %d, want 1", got)
	}

	entries, err := menu.InventoryHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("InventoryHistory() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history rows = %d, want 1 (untracked item writes none)", len(entries))
	}
	e := entries[0]
	if e.MenuItemID != tracked || e.PreviousStock != 3 || e.NewStock != 1 || e.QuantityChange != -2 {
		t.Errorf("history = {item %d, prev %d, new %d, change %d}, want {%d, 3, 1, -2}",
			e.MenuItemID, e.PreviousStock, e.NewStock, e.QuantityChange, tracked)
	}
	if want := fmt.Sprintf("Order %s", order.OrderID); e.Reason != want {
		t.Errorf("reason = %q, want %q", e.Reason, want)
	}
}

func TestCreateOrder_MissingMenuItemRollsBack(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, true, 3)

	_, err := orders.CreateOrder(context.Background(), &entity.OrderRequest{
		TableID: tableID,
		StaffID: staffID,
		Items: []entity.OrderItemRequest{
			{MenuItemID: itemID, Quantity: 1},
			{MenuItemID: 999, Quantity: 1},
		},
		ActorID: 2,
	}, CreateOptions{TaxRate: 0.05, DeltaPolicy: entity.DeltaPolicyRequested})
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// Nothing from the failed attempt may persist.
	if n := countRows(t, db, "orders"); n != 0 {
		t.Errorf("orders = %d, want 0", n)
	}
	if n := countRows(t, db, "order_items"); n != 0 {
		t.Errorf("order_items = %d, want 0", n)
	}
	if n := countRows(t, db, "inventory_history"); n != 0 {
		t.Errorf("inventory_history = %d, want 0", n)
	}
	if got := stockQuantity(t, db, itemID); got != 3 {
		t.Errorf("stock = %d, want 3 (unchanged)", got)
	}
	if got := tableStatus(t, db, tableID); got != entity.TableStatusAvailable {
		t.Errorf("table status = %q, want available", got)
	}
}

func TestCreateOrder_OccupiedTableRejected(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, false, 0)

	createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 1})

	_, err := orders.CreateOrder(context.Background(), &entity.OrderRequest{
		TableID: tableID,
		StaffID: staffID,
		Items:   []entity.OrderItemRequest{{MenuItemID: itemID, Quantity: 1}},
		ActorID: 2,
	}, CreateOptions{TaxRate: 0.05, DeltaPolicy: entity.DeltaPolicyRequested})
	if !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if n := countRows(t, db, "orders"); n != 1 {
		t.Errorf("orders = %d, want 1 (second attempt rolled back)", n)
	}
}

func TestCreateOrder_SequentialDisplayIDs(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, false, 0)

	want := []string{"#ORD-5182", "#ORD-5183", "#ORD-5184"}
	for i, w := range want {
		tableID := seedTable(t, db, fmt.Sprintf("T%d", i+1), entity.TableStatusAvailable)
		order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 1})
		if order.OrderID != w {
			t.Errorf("order %d display id = %q, want %q", i, order.OrderID, w)
		}
	}
}

func TestUpdateOrder_TipRecomputesTotal(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, false, 0)

	order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 2})

	tip := 50.00
	changed, err := orders.UpdateOrder(context.Background(), order.ID, entity.OrderUpdate{Tip: &tip})
	if err != nil {
		t.Fatalf("UpdateOrder() failed: %v", err)
	}
	if !changed {
		t.Fatal("UpdateOrder() reported no change")
	}

	updated, err := orders.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrder() failed: %v", err)
	}
	if !almostEqual(updated.Total, updated.Subtotal+updated.Tax+tip) {
		t.Errorf("total = %v, want %v", updated.Total, updated.Subtotal+updated.Tax+tip)
	}
	if !almostEqual(updated.Total, 575.00) {
		t.Errorf("total = %v, want 575.00", updated.Total)
	}
}

func TestUpdateOrder_CompletedFreesTable(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T5", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, false, 0)

	order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 1})
	if got := tableStatus(t, db, tableID); got != entity.TableStatusOccupied {
		t.Fatalf("table status = %q, want occupied", got)
	}

	status := entity.OrderStatusCompleted
	changed, err := orders.UpdateOrder(context.Background(), order.ID, entity.OrderUpdate{Status: &status})
	if err != nil {
		t.Fatalf("UpdateOrder() failed: %v", err)
	}
	if !changed {
		t.Fatal("UpdateOrder() reported no change")
	}
	if got := tableStatus(t, db, tableID); got != entity.TableStatusAvailable {
		t.Errorf("table status = %q, want available", got)
	}
}

func TestUpdateOrder_PaidFreesTableIdempotently(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, false, 0)

	order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 1})

	status := entity.OrderStatusCompleted
	if _, err := orders.UpdateOrder(context.Background(), order.ID, entity.OrderUpdate{Status: &status}); err != nil {
		t.Fatalf("UpdateOrder() failed: %v", err)
	}

	// Paying after completion frees an already-free table; that must
	// not fail the payment update.
	paid := true
	changed, err := orders.UpdateOrder(context.Background(), order.ID, entity.OrderUpdate{Paid: &paid})
	if err != nil {
		t.Fatalf("UpdateOrder() failed: %v", err)
	}
	if !changed {
		t.Fatal("UpdateOrder() reported no change")
	}
	if got := tableStatus(t, db, tableID); got != entity.TableStatusAvailable {
		t.Errorf("table status = %q, want available", got)
	}
}

func TestUpdateOrder_NotFound(t *testing.T) {
	orders, _, _, _ := newTestRepos(t)

	status := entity.OrderStatusCompleted
	_, err := orders.UpdateOrder(context.Background(), 999, entity.OrderUpdate{Status: &status})
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateOrder_EmptyUpdate(t *testing.T) {
	orders, _, _, _ := newTestRepos(t)

	changed, err := orders.UpdateOrder(context.Background(), 1, entity.OrderUpdate{})
	if err != nil {
		t.Fatalf("UpdateOrder() failed: %v", err)
	}
	if changed {
		t.Error("empty update reported a change")
	}
}

func TestDeleteOrder_RemovesItemsAndOrder(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	espresso := seedMenuItem(t, db, "Espresso", 250.00, false, 0)
	croissant := seedMenuItem(t, db, "Croissant", 120.00, false, 0)
	tea := seedMenuItem(t, db, "Tea", 90.00, false, 0)

	order := createTestOrder(t, orders, tableID, staffID,
		entity.OrderItemRequest{MenuItemID: espresso, Quantity: 1},
		entity.OrderItemRequest{MenuItemID: croissant, Quantity: 1},
		entity.OrderItemRequest{MenuItemID: tea, Quantity: 1},
	)
	if n := countRows(t, db, "order_items"); n != 3 {
		t.Fatalf("order_items = %d, want 3", n)
	}

	deleted, err := orders.DeleteOrder(context.Background(), order.ID, 2, false, entity.DeltaPolicyRequested)
	if err != nil {
		t.Fatalf("DeleteOrder() failed: %v", err)
	}
	if !deleted {
		t.Fatal("DeleteOrder() reported failure")
	}
	if n := countRows(t, db, "orders"); n != 0 {
		t.Errorf("orders = %d, want 0", n)
	}
	if n := countRows(t, db, "order_items"); n != 0 {
		t.Errorf("order_items = %d, want 0", n)
	}
	if got := tableStatus(t, db, tableID); got != entity.TableStatusAvailable {
		t.Errorf("table status = %q, want available", got)
	}

	// A retried delete reports not-found and leaves no residue.
	deleted, err = orders.DeleteOrder(context.Background(), order.ID, 2, false, entity.DeltaPolicyRequested)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("retried delete err = %v, want ErrNotFound", err)
	}
	if deleted {
		t.Error("retried delete reported success")
	}
}

func TestDeleteOrder_KeepsDecrementsByDefault(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, true, 5)

	order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 2})

	if _, err := orders.DeleteOrder(context.Background(), order.ID, 2, false, entity.DeltaPolicyRequested); err != nil {
		t.Fatalf("DeleteOrder() failed: %v", err)
	}
	if got := stockQuantity(t, db, itemID); got != 3 {
		t.Errorf("stock = %d, want 3 (decrement kept)", got)
	}
	if n := countRows(t, db, "inventory_history"); n != 1 {
		t.Errorf("history rows = %d, want 1 (no restock row)", n)
	}
}

func TestDeleteOrder_RestockPolicy(t *testing.T) {
	orders, menu, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T1", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, true, 5)

	order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 2})
	if got := stockQuantity(t, db, itemID); got != 3 {
		t.Fatalf("stock = %d, want 3", got)
	}

	if _, err := orders.DeleteOrder(context.Background(), order.ID, 2, true, entity.DeltaPolicyRequested); err != nil {
		t.Fatalf("DeleteOrder() failed: %v", err)
	}
	if got := stockQuantity(t, db, itemID); got != 5 {
		t.Errorf("stock = %d, want 5 (restored)", got)
	}

	entries, err := menu.InventoryHistory(context.Background(), itemID)
	if err != nil {
		t.Fatalf("InventoryHistory() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history rows = %d, want 2", len(entries))
	}
	restock := entries[0]
	if restock.QuantityChange != 2 {
		t.Errorf("restock change = %d, want 2", restock.QuantityChange)
	}
	if want := fmt.Sprintf("Order %s deleted", order.OrderID); restock.Reason != want {
		t.Errorf("restock reason = %q, want %q", restock.Reason, want)
	}
}

func TestGetOrderWithDetails(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	tableID := seedTable(t, db, "T5", entity.TableStatusAvailable)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, false, 0)

	order := createTestOrder(t, orders, tableID, staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 2, Notes: "double"})

	details, err := orders.GetOrderWithDetails(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderWithDetails() failed: %v", err)
	}
	if details.Table == nil || details.Table.ID != tableID {
		t.Error("table not attached to aggregate")
	}
	if details.Staff == nil || details.Staff.Name != "Alice" {
		t.Error("staff not attached to aggregate")
	}
	if len(details.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(details.Items))
	}
	item := details.Items[0]
	if item.MenuItemName != "Espresso" || item.Notes != "double" {
		t.Errorf("item = {%q, %q}, want {Espresso, double}", item.MenuItemName, item.Notes)
	}
}

func TestGetOrderStats(t *testing.T) {
	orders, _, _, db := newTestRepos(t)
	staffID := seedStaff(t, db, "Alice")
	itemID := seedMenuItem(t, db, "Espresso", 250.00, false, 0)

	first := createTestOrder(t, orders, seedTable(t, db, "T1", entity.TableStatusAvailable), staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 1})
	createTestOrder(t, orders, seedTable(t, db, "T2", entity.TableStatusAvailable), staffID, entity.OrderItemRequest{MenuItemID: itemID, Quantity: 2})

	status := entity.OrderStatusCompleted
	if _, err := orders.UpdateOrder(context.Background(), first.ID, entity.OrderUpdate{Status: &status}); err != nil {
		t.Fatalf("UpdateOrder() failed: %v", err)
	}

	stats, err := orders.GetOrderStats(context.Background())
	if err != nil {
		t.Fatalf("GetOrderStats() failed: %v", err)
	}
	if stats.TotalOrders != 2 {
		t.Errorf("total orders = %d, want 2", stats.TotalOrders)
	}
	if stats.PendingOrders != 1 || stats.CompletedOrders != 1 {
		t.Errorf("pending/completed = %d/%d, want 1/1", stats.PendingOrders, stats.CompletedOrders)
	}
	if !almostEqual(stats.TotalRevenue, 262.50+525.00) {
		t.Errorf("revenue = %v, want 787.50", stats.TotalRevenue)
	}
}
