package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the API on router behind a CORS policy for origins
func SetupRoutes(router *gin.Engine, handler *Handler, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/properties", handler.GetAllProperties)
		api.GET("/properties/:id", handler.GetProperty)
		api.POST("/search", handler.Search)

		api.GET("/locations/suggest", handler.SuggestLocations)
		api.GET("/locations/postcodes/:postcode", handler.GetPostcode)

		calculators := api.Group("/calculators")
		calculators.POST("/mortgage", handler.CalculateMortgage)
		calculators.POST("/btl", handler.CalculateBTL)
		calculators.POST("/shortlet", handler.CalculateShortLet)
	}
}
