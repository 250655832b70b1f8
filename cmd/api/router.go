package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fortunes-backend/internal/shared/middleware"
	"fortunes-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		api.GET("/fortunes", c.FortuneHandler.List)
		api.POST("/fortunes", c.FortuneHandler.Create)
		api.GET("/fortunes/:id", c.FortuneHandler.Get)
		api.PATCH("/fortunes/:id", c.FortuneHandler.Patch)

		api.GET("/authors", c.AuthorHandler.List)
		api.GET("/authors/:id", c.AuthorHandler.Get)
		api.PATCH("/authors/:id", c.AuthorHandler.Patch)

		api.GET("/tags", c.TagHandler.List)
		api.GET("/tags/:id", c.TagHandler.Get)
		api.PATCH("/tags/:id", c.TagHandler.Patch)
	}

	return router
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.Ping(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": c.Config.App.Version,
		})
	}
}
