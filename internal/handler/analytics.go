// internal/handler/analytics.go
package handler

import (
	"context"
	"errors"
	"expense-tracker/internal/analytics"
	"expense-tracker/internal/domain"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	val "expense-tracker/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Analytics interface {
	Breakdown(ctx context.Context, start, end time.Time) (domain.Breakdown, error)
	MonthlyBreakdown(ctx context.Context, start, end time.Time) (domain.MonthlyBreakdown, error)
}

type AnalyticsHandler struct {
	svc Analytics
}

func NewAnalyticsHandler(svc Analytics) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Breakdown godoc
// @Summary Category breakdown for a date range
// @Accept json
// @Produce json
// @Param request body DateRangeRequest true "Inclusive date range"
// @Success 200 {object} domain.Breakdown
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /analytics/ [post]
func (h *AnalyticsHandler) Breakdown(c *gin.Context) {
	start, end, ok := bindRange(c)
	if !ok {
		return
	}

	breakdown, err := h.svc.Breakdown(c.Request.Context(), start, end)
	if err != nil {
		slog.Error("Breakdown failed", "error", err, "start", start.Format(domain.DateLayout), "end", end.Format(domain.DateLayout))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expense summary from the database"})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// MonthlyBreakdown godoc
// @Summary Category breakdown for every calendar month in a range
// @Description start_date is moved to the first day of its month, end_date to the last day of its month
// @Accept json
// @Produce json
// @Param request body DateRangeRequest true "Inclusive date range"
// @Success 200 {object} domain.MonthlyBreakdown
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /analytics/monthly [post]
func (h *AnalyticsHandler) MonthlyBreakdown(c *gin.Context) {
	start, end, ok := bindRange(c)
	if !ok {
		return
	}

	monthly, err := h.svc.MonthlyBreakdown(c.Request.Context(), start, end)
	if errors.Is(err, analytics.ErrInvalidRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("MonthlyBreakdown failed", "error", err, "start", start.Format(domain.DateLayout), "end", end.Format(domain.DateLayout))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error while building monthly analytics"})
		return
	}
	c.JSON(http.StatusOK, monthly)
}

func bindRange(c *gin.Context) (start, end time.Time, ok bool) {
	var req DateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return start, end, false
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return start, end, false
	}
	// формат уже проверен валидатором
	start, _ = domain.ParseDay(req.StartDate)
	end, _ = domain.ParseDay(req.EndDate)
	return start, end, true
}

// === DTO ===

type DateRangeRequest struct {
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
}

func validateStruct(v any) error {
	if err := val.Validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid input: %w", err)
		}
		var errs []string
		for _, e := range verrs {
			errs = append(errs, fieldErrorToString(e))
		}
		return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "isodate":
		return fmt.Sprintf("%s must be in YYYY-MM-DD format", e.Field())
	case "category":
		return fmt.Sprintf("%s must be one of %s", e.Field(), categoryList())
	case "gte":
		return fmt.Sprintf("%s must not be negative", e.Field())
	case "max":
		return fmt.Sprintf("%s is too long", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}

func categoryList() string {
	names := make([]string, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
