// Package server assembles the HTTP application.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/handlers"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/middleware"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/realtime"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/catalog"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/freelancer"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/onboarding"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/wallet"
)

type Deps struct {
	DB          *gorm.DB
	Hub         *realtime.Hub
	Wizards     *onboarding.Manager
	Freelancers *freelancer.FreelancerService
	Gigs        *catalog.GigService
	Refunds     *wallet.RefundService

	JWTSecret     string
	JWTExpiresMin int
	FrontendURL   string
	SubmitTimeout time.Duration
	DefaultLocale string
}

func New(d Deps) *fiber.App {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.FrontendURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Accept-Language, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	authH := handlers.NewAuthHandler(d.DB, d.JWTSecret, d.JWTExpiresMin)
	catalogH := handlers.NewCatalogHandler(d.Gigs, d.Freelancers)
	refundH := handlers.NewRefundHandler(d.Refunds)

	var notifier handlers.Notifier
	if d.Hub != nil {
		notifier = d.Hub
	}
	onboardH := handlers.NewFreelancerOnboardingHandler(
		d.Wizards,
		notifier,
		d.JWTSecret,
		d.JWTExpiresMin,
		d.SubmitTimeout,
		d.DefaultLocale,
		d.FrontendURL,
	)

	api := app.Group("/api")

	// public
	authH.Routes(api)
	api.Get("/categories", catalogH.GetCategories)
	api.Get("/gigs", catalogH.ListGigs)

	// protected (JWT)
	protected := api.Group("/",
		middleware.JWTFromCookie(d.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", authH.Me)
	onboardH.Routes(protected, middleware.RequireRoles(string(models.RoleClient)))

	protected.Get("/freelancer/profile/me",
		middleware.RequireRoles(string(models.RoleFreelancer)),
		catalogH.ProfileMe,
	)

	refundH.Routes(
		protected.Group("/client", middleware.RequireRoles(string(models.RoleClient))),
		protected.Group("/admin", middleware.RequireRoles(string(models.RoleAdmin))),
	)

	// browser entry of the wizard: anonymous visitors go to login
	app.Get("/freelancer/onboarding",
		middleware.RedirectAnonymous(d.JWTSecret, d.FrontendURL+"/login"),
		onboardH.Page,
	)

	if d.Hub != nil {
		app.Get("/ws/notifications",
			realtime.RequireUpgrade(),
			middleware.JWTFromCookie(d.JWTSecret),
			middleware.AttachJWTLocals(),
			realtime.ServeNotifications(d.Hub),
		)
	}

	return app
}
