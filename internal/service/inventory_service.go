package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"cafe-pos/internal/config"
	"cafe-pos/internal/entity"
	"cafe-pos/internal/repository"
)

// menuItemCacheTTL bounds staleness of the stock-check cache.
const menuItemCacheTTL = 1 * time.Minute

// InventoryService provides direct stock adjustments, stock checks and
// the audit history.
type InventoryService struct {
	menuRepo repository.MenuRepository
	rdb      *redis.Client
	settings config.Settings
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(menuRepo repository.MenuRepository, rdb *redis.Client, settings config.Settings) *InventoryService {
	return &InventoryService{
		menuRepo: menuRepo,
		rdb:      rdb,
		settings: settings,
	}
}

// AdjustStock applies a direct stock adjustment (restock, waste,
// correction). The actor is required; there is no default identity.
// Direct adjustment enables inventory tracking on the item.
func (s *InventoryService) AdjustStock(ctx context.Context, menuItemID, delta int, reason string, actorID int) (*entity.MenuItem, error) {
	if actorID <= 0 {
		return nil, fmt.Errorf("actor id required: %w", entity.ErrValidation)
	}
	if delta == 0 {
		return nil, fmt.Errorf("delta must not be zero: %w", entity.ErrValidation)
	}

	item, err := s.menuRepo.AdjustStock(ctx, repository.StockAdjustment{
		MenuItemID:     menuItemID,
		Delta:          delta,
		Reason:         reason,
		ActorID:        actorID,
		EnableTracking: true,
		DeltaPolicy:    s.settings.DeltaPolicy,
	})
	if err != nil {
		logger.Error().Err(err).Msgf("Error adjusting stock for menu item %d", menuItemID)
		return nil, err
	}

	logger.Info().Msgf("Adjusted stock for menu item %d by %d (now %d)", menuItemID, delta, item.StockQuantity)

	s.cacheMenuItem(ctx, item)

	return item, nil
}

// CheckStock reports whether a menu item can be ordered. Untracked
// items report unlimited stock (quantity -1).
func (s *InventoryService) CheckStock(ctx context.Context, menuItemID int) (*entity.StockStatus, error) {
	item, err := s.getMenuItemCached(ctx, menuItemID)
	if err != nil {
		return nil, err
	}

	if !item.TrackInventory {
		return &entity.StockStatus{Available: true, Quantity: -1}, nil
	}

	return &entity.StockStatus{
		Available: item.StockQuantity > 0,
		Quantity:  item.StockQuantity,
	}, nil
}

// GetInventoryHistory lists audit rows, newest first. A menuItemID of
// 0 lists every item's history.
func (s *InventoryService) GetInventoryHistory(ctx context.Context, menuItemID int) ([]entity.InventoryHistoryEntry, error) {
	entries, err := s.menuRepo.InventoryHistory(ctx, menuItemID)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting inventory history")
		return nil, err
	}
	return entries, nil
}

// getMenuItemCached reads a menu item through the redis cache,
// falling back to the store on a miss.
func (s *InventoryService) getMenuItemCached(ctx context.Context, menuItemID int) (*entity.MenuItem, error) {
	// if env is set to test, read the store directly
	if os.Getenv("ENV") == "test" {
		return s.menuRepo.GetMenuItem(ctx, menuItemID)
	}

	key := fmt.Sprintf("menu-item:%d", menuItemID)
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logger.Warn().Msgf("Menu item %d not found in cache", menuItemID)
		} else {
			logger.Error().Err(err).Msgf("Error getting menu item %d from cache", menuItemID)
			return nil, err
		}
	}

	if cached != "" {
		var item entity.MenuItem
		if err := json.Unmarshal([]byte(cached), &item); err != nil {
			logger.Error().Err(err).Msgf("Error unmarshalling menu item %d", menuItemID)
			return nil, err
		}
		return &item, nil
	}

	item, err := s.menuRepo.GetMenuItem(ctx, menuItemID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting menu item %d", menuItemID)
		return nil, err
	}

	s.cacheMenuItem(ctx, item)

	return item, nil
}

func (s *InventoryService) cacheMenuItem(ctx context.Context, item *entity.MenuItem) {
	// if env is set to test, skip the cache
	if os.Getenv("ENV") == "test" {
		return
	}

	data, err := json.Marshal(item)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling menu item %d", item.ID)
		return
	}

	key := fmt.Sprintf("menu-item:%d", item.ID)
	if err := s.rdb.Set(ctx, key, data, menuItemCacheTTL).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error setting menu item %d in cache", item.ID)
	}
}
