package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/payment"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// loginで発行するJWTと同じ寿命でcookieを張る
const tokenCookieTTL = 7 * 24 * time.Hour

func main() {
	logger := log.New("api")
	logger.SetLevel(log.INFO)

	// .envは無くてもよい（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil {
		logger.Infof(".env not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	invRepo := infraRepo.NewInventoryGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	// 決済クライアント。キー未設定ならnilのまま渡して
	// チェックアウトだけ503にする（他の機能は動かす）。
	var paymentClient payment.Client
	if cfg.StripeSecretKey != "" {
		paymentClient = payment.NewStripeClient(cfg.StripeSecretKey)
	} else {
		logger.Warnf("STRIPE_SECRET_KEY not set: checkout disabled")
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator())
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, cartRepo, invRepo, paymentClient, logger)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager)
	adminStatsUC := usecase.NewAdminStatsUsecase(productRepo, orderRepo, userRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC, tokenCookieTTL),
		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, cfg),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminStats:   handler.NewAdminStatsHandler(adminStatsUC),
	}

	//Server起動
	e := server.New(cfg, handlers)
	if err := server.Start(e, cfg); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
