package main

import (
	"context"
	"fmt"

	"shopfront/internal/cart"
	"shopfront/internal/config"
	"shopfront/internal/domain/model"
	"shopfront/internal/handler"
	"shopfront/internal/infra/db"
	"shopfront/internal/infra/intentstore"
	infraRepo "shopfront/internal/infra/repository"
	"shopfront/internal/payment"
	repo "shopfront/internal/repository"
	"shopfront/internal/server"
	"shopfront/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	//カタログ（デフォルトはインメモリ）
	var productRepo repo.ProductRepository
	switch cfg.CatalogDriver {
	case "postgres":
		gormDB, err := db.Connect(cfg)
		if err != nil {
			log.Fatal("db connect failed", zap.Error(err))
		}
		if err := gormDB.AutoMigrate(&model.Product{}); err != nil {
			log.Fatal("migrate failed", zap.Error(err))
		}
		productRepo = infraRepo.NewProductGormRepository(gormDB)
	default:
		productRepo = infraRepo.NewProductMemoryRepository()
	}

	if err := infraRepo.EnsureSeeded(context.Background(), productRepo); err != nil {
		log.Fatal("catalog seed failed", zap.Error(err))
	}

	//mock intentエンドポイント用のboltストア
	intentDB, err := intentstore.Open(cfg.IntentDBPath)
	if err != nil {
		log.Fatal("intent store open failed", zap.Error(err))
	}
	defer func() { _ = intentDB.Close() }()

	//intentサービスのURL（未設定なら自分のmockを叩く）
	intentURL := cfg.IntentURL
	if intentURL == "" {
		intentURL = fmt.Sprintf("http://localhost:%s/api/create-payment-intent", cfg.Port)
	}

	cartStore := cart.NewStore()
	intents := payment.NewHTTPIntentClient(intentURL, cfg.IntentTimeout, cfg.IntentRetries, log)
	collector := payment.NewSimulatedCollector()

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartStore, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(intents, collector, cfg.Currency, cfg.ConfirmTimeout, log)

	//Handler生成
	handlers := server.Handlers{
		Product:  handler.NewProductHandler(productUC),
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC, cartStore),
		Intent:   handler.NewIntentHandler(intentDB, log),
	}

	//Server起動
	addr := ":" + cfg.Port
	log.Info("starting server",
		zap.String("addr", addr),
		zap.String("catalog_driver", cfg.CatalogDriver),
	)

	if err := server.Start(addr, cfg, handlers); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.GoEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
