package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"cafe-pos/internal/api"
	"cafe-pos/internal/config"
	"cafe-pos/internal/repository"
	"cafe-pos/internal/service"
	"cafe-pos/migrations"
)

func connectDBEnv(host, port, user, pass, dbname string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to DB %s", dbname)
				return db, nil
			}
		}
		log.Printf("Retry %d: Failed to connect to DB %s (%s:%s): %v", i+1, dbname, host, port, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", dbname, host, port, err)
}

func main() {
	db, err := connectDBEnv(os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_NAME"))
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrateAll(3, db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	})

	kafkaWriter := config.NewKafkaWriter("order-topic")
	settings := config.Load()

	menuRepo := repository.NewMenuRepository(db)
	tableRepo := repository.NewTableRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	orderRepo := repository.NewOrderRepository(db, menuRepo, tableRepo, staffRepo)

	orderService := service.NewOrderService(*orderRepo, *staffRepo, *tableRepo, kafkaWriter, rdb, settings)
	inventoryService := service.NewInventoryService(*menuRepo, rdb, settings)
	tableService := service.NewTableService(*tableRepo)

	orderHandler := api.NewOrderHandler(orderService)
	inventoryHandler := api.NewInventoryHandler(inventoryService)
	tableHandler := api.NewTableHandler(tableService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.POST("/orders", orderHandler.CreateOrder)
	e.PUT("/orders/:id", orderHandler.UpdateOrder)
	e.DELETE("/orders/:id", orderHandler.DeleteOrder)
	e.GET("/orders", orderHandler.GetOrders)
	e.GET("/orders/recent", orderHandler.GetRecentOrders)
	e.GET("/orders/stats", orderHandler.GetOrderStats)
	e.GET("/orders/:id", orderHandler.GetOrder)

	e.POST("/menu-items/:id/stock", inventoryHandler.AdjustStock)
	e.GET("/menu-items/:id/stock", inventoryHandler.CheckStock)
	e.GET("/inventory/history", inventoryHandler.GetInventoryHistory)

	e.GET("/tables", tableHandler.GetTables)
	e.GET("/tables/board", tableHandler.GetTableBoard)
	e.PUT("/tables/:id/status", tableHandler.SetTableStatus)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "cafe-pos",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":8080"))
}
