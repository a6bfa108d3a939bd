package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/admin"
	"github.com/wichananm65/grocery-store/internal/auth"
	"github.com/wichananm65/grocery-store/internal/cart"
	"github.com/wichananm65/grocery-store/internal/category"
	"github.com/wichananm65/grocery-store/internal/checkout"
	"github.com/wichananm65/grocery-store/internal/event"
	"github.com/wichananm65/grocery-store/internal/message"
	"github.com/wichananm65/grocery-store/internal/metrics"
	"github.com/wichananm65/grocery-store/internal/order"
	"github.com/wichananm65/grocery-store/internal/product"
	"github.com/wichananm65/grocery-store/internal/user"
)

// Deps is everything the HTTP layer is assembled from.
type Deps struct {
	Log       *zap.Logger
	Bus       *event.Bus
	JWTSecret string
	// Heartbeat is the idle interval of the event stream; zero uses 25s.
	Heartbeat time.Duration

	Admin    *admin.Service
	AdminH   *admin.Handler
	User     *user.Handler
	Product  *product.Handler
	Category *category.Handler
	Cart     *cart.Handler
	Order    *order.Handler
	Checkout *checkout.Handler
	Message  *message.Handler
}

// New builds the fiber app: request logging, CORS, optional JWT, then public,
// shopper and admin routes.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(requestLogger(d.Log))
	setupCORS(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	heartbeat := d.Heartbeat
	if heartbeat == 0 {
		heartbeat = 25 * time.Second
	}
	app.Get("/api/v1/events", event.StreamHandler(d.Bus, heartbeat))

	app.Use(auth.JWT(d.JWTSecret), auth.Middleware())

	d.User.RegisterPublicRoutes(app)
	d.AdminH.RegisterPublicRoutes(app)
	d.Product.RegisterPublicRoutes(app)
	d.Category.RegisterPublicRoutes(app)
	d.Message.RegisterPublicRoutes(app)

	d.User.RegisterProtectedRoutes(app)
	d.Cart.RegisterProtectedRoutes(app)
	d.Order.RegisterProtectedRoutes(app)
	d.Checkout.RegisterProtectedRoutes(app)

	guard := d.Admin.Guard()
	d.AdminH.RegisterAdminRoutes(app, guard)
	d.Product.RegisterAdminRoutes(app, guard)
	d.Category.RegisterAdminRoutes(app, guard)
	d.Order.RegisterAdminRoutes(app, guard)
	d.Message.RegisterAdminRoutes(app, guard)

	return app
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Path()
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			path = r.Path
		}
		metrics.ObserveRequest(c.Method(), path, status, elapsed)
		log.Debug("request",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
		return err
	}
}
