package api

import (
	"github.com/gin-gonic/gin"

	"agencypulse/server/internal/auth"
	"agencypulse/server/internal/models"
)

func SetupRoutes(router *gin.Engine, handler *Handler, authService *auth.Service) {
	api := router.Group("/api")
	api.GET("/health", handler.Health)

	public := api.Group("/auth")
	{
		public.POST("/login", handler.Login)
		public.POST("/register", handler.Register)
		public.POST("/reset-request", handler.RequestReset)
	}

	authed := api.Group("", auth.RequireAuth(authService))
	{
		authed.POST("/auth/logout", handler.Logout)

		authed.GET("/properties", handler.GetAllProperties)
		authed.POST("/properties", handler.CreateProperty)
		authed.GET("/properties/suggestions", handler.GetSuggestions)
		authed.GET("/properties/:id", handler.GetProperty)
		authed.PUT("/properties/:id", handler.UpdateProperty)
		authed.DELETE("/properties/:id", handler.DeleteProperty)
		authed.GET("/properties/:id/prediction", handler.GetPrediction)

		authed.POST("/metrics", handler.GetMetrics)
		authed.POST("/metrics/preview-count", handler.PreviewCount)
		authed.GET("/charts/:kind", handler.GetChart)
		authed.GET("/market-reports", handler.GetMarketReports)

		authed.GET("/reports/property.pdf", handler.DownloadPropertyPDF)
		authed.GET("/reports/property.csv", handler.DownloadPropertyCSV)
		authed.GET("/reports/property.xlsx", handler.DownloadPropertyXLSX)
		authed.GET("/reports/property.html", handler.DownloadPropertyHTML)

		authed.GET("/activity", handler.GetActivity)
		authed.POST("/activity", handler.CreateActivity)
		authed.DELETE("/activity/:id", handler.DeleteActivity)
	}

	admin := api.Group("/admin", auth.RequireAuth(authService), auth.RequireRole(models.RoleAdmin))
	{
		admin.GET("/commission", handler.GetCommissionReport)
		admin.GET("/commission.csv", handler.DownloadCommissionCSV)
		admin.GET("/commission.pdf", handler.DownloadCommissionPDF)
		admin.POST("/import", handler.ImportProperties)
	}
}
