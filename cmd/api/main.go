package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/gateway"
	"storefront/internal/httpserver"
	"storefront/internal/notify"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	customerrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	promorepo "storefront/internal/repository/promotion"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
	promosvc "storefront/internal/service/promotion"
	webhooksvc "storefront/internal/service/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	shipping := pricing.ShippingConfig{
		FreeThresholdCents: cfg.FreeShippingThresholdCents,
		FeeCents:           cfg.ShippingFeeCents,
	}
	gateways := []gateway.Gateway{
		gateway.NewCard(cfg.CardGatewayURL, cfg.CardGatewaySecret, cfg.CardGatewayWebhookSecret),
		gateway.NewWallet(cfg.WalletGatewayURL, cfg.WalletGatewayToken),
	}
	notifier := notify.NewLogNotifier(logger)

	productRepo := productrepo.NewPostgres(dbpool, logger)
	promoRepo := promorepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool)

	catalogService := catalogsvc.New(productRepo)
	promotionService := promosvc.New(promoRepo, productRepo, logger)
	cartService := cartsvc.New(cartRepo, productRepo, shipping)
	checkoutService := checkoutsvc.New(productRepo, customerRepo, promoRepo, gateways, checkoutsvc.Config{
		Shipping:   shipping,
		Currency:   cfg.Currency,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	}, logger)
	webhookService := webhooksvc.New(gateways, orderRepo, customerRepo, notifier, logger)
	orderService := ordersvc.New(orderRepo, notifier, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CatalogSvc:   catalogService,
		CartSvc:      cartService,
		CheckoutSvc:  checkoutService,
		WebhookSvc:   webhookService,
		PromotionSvc: promotionService,
		OrderSvc:     orderService,
		AdminToken:   cfg.AdminToken,
		CORSOrigins:  cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
