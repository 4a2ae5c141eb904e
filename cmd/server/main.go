package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-api/internal/config"
	"github.com/iliyamo/shop-api/internal/database"
	"github.com/iliyamo/shop-api/internal/handler"
	"github.com/iliyamo/shop-api/internal/queue"
	"github.com/iliyamo/shop-api/internal/repository"
	"github.com/iliyamo/shop-api/internal/router"
	"github.com/iliyamo/shop-api/internal/service"
	"github.com/iliyamo/shop-api/internal/utils"
)

func main() {
	// .env is optional; real deployments provide the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("warn: redis unavailable, rate limiting and response cache disabled")
	}

	access := utils.TokenProfile{
		Secret: cfg.AccessSecret,
		TTL:    time.Duration(cfg.AccessTTLMin) * time.Minute,
	}
	refresh := utils.TokenProfile{
		Secret: cfg.RefreshSecret,
		TTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	}

	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)

	authService := service.NewAuthService(userRepo, access, refresh, cfg.BcryptCost)
	userService := service.NewUserService(userRepo, cfg.BcryptCost)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryRepo)
	productHandler := handler.NewProductHandler(productRepo, categoryRepo)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, access, refresh, userRepo, config.LoadRateLimitConfig(), rdb)
	router.RegisterUsers(e, userHandler, access, userRepo)
	router.RegisterCatalog(e, categoryHandler, productHandler, access, userRepo, config.LoadCacheConfig(), rdb)

	// Audit consumer; reconnects on its own and never brings the server down.
	go queue.StartAccountConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
