package server

import (
	"github.com/casapps/casrecipes/src/internal/api/handlers"
	"github.com/casapps/casrecipes/src/internal/auth"
)

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	authMiddleware := auth.NewMiddleware(s.auth)

	// Health checks
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/healthz", s.handleHealthz)

	// Uploaded recipe images
	s.echo.Static(s.config.GetString("media.url_prefix"), s.config.GetString("media.root"))

	apiV1 := s.echo.Group("/api/v1")

	// Authentication
	authHandler := handlers.NewAuthHandler(s.db, s.auth, s.config)
	authGroup := apiV1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/2fa/setup", authHandler.Setup2FA, authMiddleware.Require())
	authGroup.POST("/2fa/enable", authHandler.Enable2FA, authMiddleware.Require())

	// Users and subscriptions
	userHandler := handlers.NewUserHandler(s.db, s.config)
	userGroup := apiV1.Group("/users")
	userGroup.GET("", userHandler.List, authMiddleware.Optional())
	userGroup.GET("/me", userHandler.Me, authMiddleware.Require())
	userGroup.GET("/subscriptions", userHandler.Subscriptions, authMiddleware.Require())
	userGroup.GET("/:id", userHandler.Get, authMiddleware.Optional())
	userGroup.POST("/:id/subscribe", userHandler.Subscribe, authMiddleware.Require())
	userGroup.DELETE("/:id/subscribe", userHandler.Unsubscribe, authMiddleware.Require())

	// Tag and ingredient catalogs (read-only)
	catalogHandler := handlers.NewCatalogHandler(s.db, s.config)
	apiV1.GET("/tags", catalogHandler.ListTags)
	apiV1.GET("/tags/:id", catalogHandler.GetTag)
	apiV1.GET("/ingredients", catalogHandler.ListIngredients)
	apiV1.GET("/ingredients/:id", catalogHandler.GetIngredient)

	// Recipes
	recipeHandler := handlers.NewRecipeHandler(s.db, s.config)
	recipeGroup := apiV1.Group("/recipes")
	recipeGroup.GET("", recipeHandler.List, authMiddleware.Optional())
	recipeGroup.POST("", recipeHandler.Create, authMiddleware.Require())
	recipeGroup.GET("/download_shopping_cart", recipeHandler.DownloadShoppingCart, authMiddleware.Require())
	recipeGroup.GET("/:id", recipeHandler.Get, authMiddleware.Optional())
	recipeGroup.PUT("/:id", recipeHandler.Update, authMiddleware.Require())
	recipeGroup.PATCH("/:id", recipeHandler.Update, authMiddleware.Require())
	recipeGroup.DELETE("/:id", recipeHandler.Delete, authMiddleware.Require())
	recipeGroup.POST("/:id/favorite", recipeHandler.Favorite, authMiddleware.Require())
	recipeGroup.DELETE("/:id/favorite", recipeHandler.Unfavorite, authMiddleware.Require())
	recipeGroup.POST("/:id/shopping_cart", recipeHandler.AddToCart, authMiddleware.Require())
	recipeGroup.DELETE("/:id/shopping_cart", recipeHandler.RemoveFromCart, authMiddleware.Require())
}
