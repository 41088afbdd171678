package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Reiman-Gardens/flutr/internal/handler"
	"github.com/Reiman-Gardens/flutr/internal/middleware"
	"github.com/Reiman-Gardens/flutr/internal/model"
	"github.com/Reiman-Gardens/flutr/internal/store"
	"github.com/Reiman-Gardens/flutr/pkg/config"
	"github.com/Reiman-Gardens/flutr/pkg/database"
	"github.com/Reiman-Gardens/flutr/pkg/jwtutil"
	"github.com/Reiman-Gardens/flutr/pkg/logger"
	"github.com/Reiman-Gardens/flutr/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting flutr server", cfg.LogConfig()...)

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.MigrateModels(db, model.AllModels()...); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	st := store.New(db)
	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	h := handler.New(st, jwtUtil, cfg)

	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestID)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware(cfg.ServiceName))

	gate, err := middleware.Gate(&cfg.Gate, jwtUtil)
	if err != nil {
		log.Fatal("Invalid gate pattern", zap.Error(err))
	}
	e.Use(gate)

	registerRoutes(e, h, st, jwtUtil)

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()
	log.Info("Server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

func registerRoutes(e *echo.Echo, h *handler.Handler, st *store.Store, jwtUtil *jwtutil.JWTUtil) {
	// Public surface
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", h.Metrics)
	e.POST("/login", h.Login)

	e.GET("/institutions", h.ListInstitutions)
	e.GET("/institutions/:slug", h.GetInstitutionBySlug)
	e.GET("/species", h.ListSpecies)
	e.GET("/species/:id", h.GetSpecies)

	// Authenticated API
	api := e.Group("/api", middleware.Auth(jwtUtil))
	api.GET("/me", h.Me)

	// Catalog and institution lifecycle, superuser only
	su := api.Group("", middleware.RequireRole(model.RoleSuperuser))
	su.POST("/institutions", h.CreateInstitution)
	su.PUT("/institutions/:id", h.UpdateInstitution)
	su.DELETE("/institutions/:id", h.DeleteInstitution)
	su.POST("/species", h.CreateSpecies)
	su.DELETE("/species/:id", h.DeleteSpecies)

	// Institution-scoped admin pages. The gate already demands a session
	// for these paths; RequireInstitution pins them to the right tenant.
	resolve := func(c echo.Context, slug string) (uint, error) {
		inst, err := st.GetInstitutionBySlug(c.Request().Context(), slug)
		if err != nil {
			return 0, err
		}
		return inst.ID, nil
	}

	admin := e.Group("/:institution/admin", middleware.Auth(jwtUtil), middleware.RequireInstitution(resolve))

	users := admin.Group("/users", middleware.RequireRole(model.RoleOrgAdmin, model.RoleSuperuser))
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.DELETE("/:id", h.DeleteUser)

	admin.POST("/news", h.CreateNews)
	admin.GET("/news", h.ListNews)
	admin.PUT("/news/:id", h.UpdateNews)
	admin.DELETE("/news/:id", h.DeleteNews)

	admin.GET("/species", h.ListEnabledSpecies)
	admin.POST("/species", h.EnableSpecies)
	admin.DELETE("/species/:id", h.DisableSpecies)

	admin.POST("/suppliers", h.CreateSupplier)
	admin.GET("/suppliers", h.ListSuppliers)
	admin.GET("/suppliers/:id", h.GetSupplier)
	admin.PUT("/suppliers/:id", h.UpdateSupplier)
	admin.POST("/suppliers/:id/deactivate", h.DeactivateSupplier)
	admin.DELETE("/suppliers/:id", h.DeleteSupplier)

	admin.POST("/shipments", h.CreateShipment)
	admin.POST("/shipments/import", h.ImportShipment)
	admin.GET("/shipments", h.ListShipments)
	admin.GET("/shipments/:id", h.GetShipment)
	admin.DELETE("/shipments/:id", h.DeleteShipment)
	admin.POST("/shipments/:id/items", h.AddShipmentItem)
	admin.DELETE("/shipments/:id/items/:item_id", h.DeleteShipmentItem)

	admin.POST("/releases", h.CreateReleaseEvent)
	admin.GET("/releases", h.ListReleaseEvents)
	admin.GET("/releases/:id", h.GetReleaseEvent)
	admin.DELETE("/releases/:id", h.DeleteReleaseEvent)
	admin.POST("/releases/:id/items", h.AddReleaseItem)
}
