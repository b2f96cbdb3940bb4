package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleet-service-backend/config"
	"fleet-service-backend/internal/auth"
	"fleet-service-backend/internal/mw"
	"fleet-service-backend/internal/scope"
	"fleet-service-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(st store.Store, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	policy := scope.Policy{StaffIsAdmin: cfg.Access.AdminIncludesStaff()}
	handler := NewHandler(st, tokens, policy)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	requireAuth := mw.Auth(tokens, st)
	optionalAuth := mw.OptionalAuth(tokens, st)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", handler.Login)
		api.GET("/auth/me", requireAuth, handler.Me)

		// Reference catalogs: public reads (cached), superuser-only writes.
		for path, kind := range CatalogRoutes {
			api.GET("/"+path, caching, handler.ListCatalog(kind))
			api.GET("/"+path+"/:id", caching, handler.GetCatalogItem(kind))
			api.POST("/"+path, requireAuth, handler.CreateCatalogItem(kind))
			api.DELETE("/"+path+"/:id", requireAuth, handler.DeleteCatalogItem(kind))
		}
		api.GET("/service-companies", caching, handler.ListCompanies)
		api.GET("/service-companies/:id", caching, handler.GetCompany)
		api.POST("/service-companies", requireAuth, handler.CreateCompany)
		api.DELETE("/service-companies/:id", requireAuth, handler.DeleteCompany)

		api.GET("/machines", requireAuth, handler.ListMachines)
		api.GET("/machines/:id", requireAuth, handler.GetMachine)
		api.POST("/machines", requireAuth, handler.CreateMachine)
		api.PUT("/machines/:id", requireAuth, handler.UpdateMachine)
		api.DELETE("/machines/:id", requireAuth, handler.DeleteMachine)

		api.GET("/maintenances", requireAuth, handler.ListMaintenances)
		api.GET("/maintenances/:id", requireAuth, handler.GetMaintenance)
		api.POST("/maintenances", requireAuth, handler.CreateMaintenance)
		api.PUT("/maintenances/:id", requireAuth, handler.UpdateMaintenance)
		api.DELETE("/maintenances/:id", requireAuth, handler.DeleteMaintenance)

		api.GET("/claims", requireAuth, handler.ListClaims)
		api.GET("/claims/:id", requireAuth, handler.GetClaim)
		api.POST("/claims", requireAuth, handler.CreateClaim)
		api.PUT("/claims/:id", requireAuth, handler.UpdateClaim)
		api.DELETE("/claims/:id", requireAuth, handler.DeleteClaim)

		api.GET("/public-machine-info", optionalAuth, handler.PublicMachineInfo)
	}

	return r
}
