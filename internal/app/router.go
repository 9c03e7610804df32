package app

import (
	"fair_exam_backend/docs"
	"fair_exam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	router.GET("/", c.health.Root)

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
		api.POST("/analyze", c.analysis.Analyze)
		api.GET("/services/status", c.analysis.ServicesStatus)
	}
}
