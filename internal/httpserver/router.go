package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	promosvc "storefront/internal/service/promotion"
	webhooksvc "storefront/internal/service/webhook"
)

type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productrepo.CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in productrepo.UpdateProductInput) (*domain.Product, error)
	AddVariant(ctx context.Context, productID string, in productrepo.VariantInput) (*domain.Variant, error)
}

type CartService interface {
	GetOrCreate(ctx context.Context, sessionKey string, customerID *string) (*cartsvc.View, error)
	AddLine(ctx context.Context, sessionKey, productID string, variantID *string, quantity int) (*cartsvc.View, error)
	SetQuantity(ctx context.Context, sessionKey, lineID string, quantity int) (*cartsvc.View, error)
	RemoveLine(ctx context.Context, sessionKey, lineID string) (*cartsvc.View, error)
	Clear(ctx context.Context, sessionKey string) (*cartsvc.View, error)
}

type CheckoutService interface {
	Start(ctx context.Context, in checkoutsvc.Input) (*checkoutsvc.Result, error)
}

type WebhookService interface {
	Process(ctx context.Context, gatewayName string, n gateway.Notification) (*webhooksvc.Outcome, error)
}

type PromotionService interface {
	Create(ctx context.Context, in promosvc.CreateInput) (*promosvc.View, error)
	Get(ctx context.Context, id string) (*promosvc.View, error)
	List(ctx context.Context) ([]promosvc.View, error)
	Delete(ctx context.Context, id string) error
	SweepExpired(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*promosvc.Stats, error)
}

type OrderService interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Transition(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// Deps carries the services the router exposes.
type Deps struct {
	CatalogSvc   CatalogService
	CartSvc      CartService
	CheckoutSvc  CheckoutService
	WebhookSvc   WebhookService
	PromotionSvc PromotionService
	OrderSvc     OrderService

	AdminToken  string
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CatalogSvc == nil || deps.CartSvc == nil || deps.CheckoutSvc == nil ||
		deps.WebhookSvc == nil || deps.PromotionSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Session-Key"},
			ExposeHeaders:    []string{"X-Session-Key"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/products", listProductsHandler(deps.CatalogSvc))
	router.GET("/products/:id", getProductHandler(deps.CatalogSvc))

	cart := router.Group("/cart", sessionKeyMiddleware())
	{
		cart.GET("", getCartHandler(deps.CartSvc))
		cart.POST("/lines", addCartLineHandler(deps.CartSvc))
		cart.PATCH("/lines/:lineId", setCartLineQuantityHandler(deps.CartSvc))
		cart.DELETE("/lines/:lineId", removeCartLineHandler(deps.CartSvc))
		cart.DELETE("", clearCartHandler(deps.CartSvc))
	}

	router.POST("/checkout", checkoutHandler(deps.CheckoutSvc))
	router.POST("/webhooks/:gateway", webhookHandler(deps.WebhookSvc))

	admin := router.Group("/admin", adminAuthMiddleware(deps.AdminToken))
	{
		admin.POST("/products", createProductHandler(deps.CatalogSvc))
		admin.PATCH("/products/:id", updateProductHandler(deps.CatalogSvc))
		admin.POST("/products/:id/variants", addVariantHandler(deps.CatalogSvc))

		admin.GET("/promotions", listPromotionsHandler(deps.PromotionSvc))
		admin.GET("/promotions/stats", promotionStatsHandler(deps.PromotionSvc))
		admin.POST("/promotions", createPromotionHandler(deps.PromotionSvc))
		admin.POST("/promotions/sweep", sweepPromotionsHandler(deps.PromotionSvc))
		admin.GET("/promotions/:id", getPromotionHandler(deps.PromotionSvc))
		admin.DELETE("/promotions/:id", deletePromotionHandler(deps.PromotionSvc))

		admin.GET("/orders", listOrdersHandler(deps.OrderSvc))
		admin.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
		admin.POST("/orders/:id/status", transitionOrderHandler(deps.OrderSvc))
		admin.DELETE("/orders/:id", deleteOrderHandler(deps.OrderSvc))
	}

	return router, nil
}
