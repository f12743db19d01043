// internal/handler/router.go
package handler

import (
	"expense-tracker/internal/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the API routes. POST /analytics (no slash) is answered by
// gin's RedirectTrailingSlash with a 307 to /analytics/.
func NewRouter(store ExpenseStorage, svc Analytics) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Expense Manager API is running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	expenses := NewExpenseHandler(store)
	router.GET("/expenses", expenses.ListAll)
	router.GET("/expenses/:date", expenses.GetForDate)
	router.POST("/expenses/:date", expenses.ReplaceForDate)

	analyticsHandler := NewAnalyticsHandler(svc)
	router.POST("/analytics/", analyticsHandler.Breakdown)
	router.POST("/analytics/monthly", analyticsHandler.MonthlyBreakdown)

	return router
}
