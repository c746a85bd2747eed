package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/pkg/logger"
	"github.com/keyshopvn/keyshop/pkg/xresponse"
)

const (
	contextUserIDKey   = "auth_user_id"
	contextUsernameKey = "auth_username"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	router *gin.Engine,
	catalogHandler *CatalogHandler,
	purchaseHandler *PurchaseHandler,
	authService domain.AuthService,
) {
	v1 := router.Group("/api/v1")
	{
		// Catalog and quotes are public; a token personalizes the quote.
		public := v1.Group("")
		public.Use(optionalAuthMiddleware(authService))
		{
			public.GET("/catalog", catalogHandler.ListProducts)
			public.GET("/catalog/variants/:id/quote", purchaseHandler.GetQuote)
		}

		protected := v1.Group("")
		protected.Use(authMiddleware(authService))
		{
			protected.POST("/purchase", purchaseHandler.PlaceOrder)
		}
	}

	logger.Info("API routes configured successfully")
}

// authMiddleware requires a valid bearer token
func authMiddleware(authService domain.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := validateBearer(c, authService)
		if !ok {
			xresponse.NotAuthenticated(c, "Please log in to continue")
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextUsernameKey, claims.Username)
		c.Next()
	}
}

// optionalAuthMiddleware attaches identity when a valid token is present
// and lets the request through either way.
func optionalAuthMiddleware(authService domain.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := validateBearer(c, authService); ok {
			c.Set(contextUserIDKey, claims.UserID)
			c.Set(contextUsernameKey, claims.Username)
		}
		c.Next()
	}
}

func validateBearer(c *gin.Context, authService domain.AuthService) (*domain.AuthClaims, bool) {
	if authService == nil {
		return nil, false
	}

	header := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" || token == header {
		return nil, false
	}

	claims, err := authService.ValidateToken(token)
	if err != nil {
		logger.Debug("Token validation failed", logger.ErrorField(err))
		return nil, false
	}

	return claims, true
}

// GetCurrentUserID extracts the authenticated user ID from the context.
func GetCurrentUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(contextUserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}
