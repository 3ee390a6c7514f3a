package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/hotspotcentral/hotspot-core/internal/app/deliveries"
	"github.com/hotspotcentral/hotspot-core/internal/app/middlewares"
	"github.com/hotspotcentral/hotspot-core/internal/app/services"
	"github.com/hotspotcentral/hotspot-core/internal/infrastructures"
	"github.com/hotspotcentral/hotspot-core/pkg/tokencache"
)

// Application represents the main application container for hotspot-core
type Application struct {
	HealthHandler       *deliveries.HealthHandler
	PaymentHandler      *deliveries.PaymentHandler
	VoucherHandler      *deliveries.VoucherHandler
	AdminHandler        *deliveries.AdminHandler
	NetworkHandler      *deliveries.NetworkHandler
	RateLimitMiddleware *middlewares.RateLimitMiddleware
	AdminKeyMiddleware  *middlewares.AdminKeyMiddleware
}

// RegisterRoutes registers all application routes using a Fiber router.
// Rate limits are attached per route by the handlers themselves; the IPN
// endpoint in particular must stay unthrottled.
func (app *Application) RegisterRoutes(router fiber.Router) {
	app.HealthHandler.RegisterRoutes(router)
	app.PaymentHandler.RegisterRoutes(router)
	app.VoucherHandler.RegisterRoutes(router)
	app.AdminHandler.RegisterRoutes(router)
	app.NetworkHandler.RegisterRoutes(router)
}

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	infrastructures.NewPesapalClient,
	wire.Value("hotspot"),
	wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)),
	middlewares.NewRedisRateLimiter,
	wire.Bind(new(tokencache.Cache), new(*tokencache.RedisCache)),
	tokencache.NewRedisCache,
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewInventoryService,
	services.NewPesapalService,
	services.NewAlertService,
	services.NewNotifierService,
	services.NewCheckoutService,
	services.NewNetworkService,
	services.NewReconciliationService,
	wire.Bind(new(services.Inventory), new(*services.InventoryService)),
	wire.Bind(new(services.StatusFetcher), new(*services.PesapalService)),
	wire.Bind(new(services.AlertSink), new(*services.AlertService)),
	wire.Bind(new(services.CustomerNotifier), new(*services.NotifierService)),
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewRateLimitMiddleware,
	middlewares.NewAdminKeyMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewPaymentHandler,
	deliveries.NewVoucherHandler,
	deliveries.NewAdminHandler,
	deliveries.NewNetworkHandler,
	wire.Struct(new(Application), "*"), // This tells Wire to build the Application struct
)
