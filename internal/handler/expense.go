// internal/handler/expense.go
package handler

import (
	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ExpenseStorage interface {
	storage.ExpenseReader
	storage.ExpenseWriter
}

type ExpenseHandler struct {
	store ExpenseStorage
}

func NewExpenseHandler(store ExpenseStorage) *ExpenseHandler {
	return &ExpenseHandler{store: store}
}

// GetForDate godoc
// @Summary Get expenses for a day
// @Param date path string true "Day in YYYY-MM-DD format"
// @Success 200 {array} ExpenseResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /expenses/{date} [get]
func (h *ExpenseHandler) GetForDate(c *gin.Context) {
	date, ok := pathDate(c)
	if !ok {
		return
	}

	expenses, err := h.store.FetchForDate(c.Request.Context(), date)
	if err != nil {
		slog.Error("FetchForDate failed", "error", err, "date", c.Param("date"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expense from the database"})
		return
	}

	resp := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, ExpenseResponse{Amount: e.Amount, Category: string(e.Category), Notes: e.Notes})
	}
	c.JSON(http.StatusOK, resp)
}

// ListAll godoc
// @Summary List every stored expense ordered by date
// @Success 200 {array} DatedExpenseResponse
// @Failure 500 {object} map[string]string
// @Router /expenses [get]
func (h *ExpenseHandler) ListAll(c *gin.Context) {
	expenses, err := h.store.FetchAll(c.Request.Context())
	if err != nil {
		slog.Error("FetchAll failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expenses from the database"})
		return
	}

	resp := make([]DatedExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, DatedExpenseResponse{
			Date:            e.Date.Format(domain.DateLayout),
			ExpenseResponse: ExpenseResponse{Amount: e.Amount, Category: string(e.Category), Notes: e.Notes},
		})
	}
	c.JSON(http.StatusOK, resp)
}

// ReplaceForDate godoc
// @Summary Replace all expenses of a day
// @Description Deletes the day's expenses and stores the submitted list in one transaction
// @Accept json
// @Produce json
// @Param date path string true "Day in YYYY-MM-DD format"
// @Param request body []ExpenseRequest true "Expenses"
// @Success 200 {object} map[string]string{"message":"Expenses updated successfully"}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /expenses/{date} [post]
func (h *ExpenseHandler) ReplaceForDate(c *gin.Context) {
	date, ok := pathDate(c)
	if !ok {
		return
	}

	var req []ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	expenses := make([]domain.Expense, len(req))
	for i, item := range req {
		if err := validateStruct(item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		expenses[i] = domain.Expense{
			Date:     date,
			Amount:   item.Amount,
			Category: domain.Category(item.Category),
			Notes:    item.Notes,
		}
	}

	if err := h.store.ReplaceForDate(c.Request.Context(), date, expenses); err != nil {
		slog.Error("ReplaceForDate failed", "error", err, "date", c.Param("date"), "count", len(expenses))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expenses"})
		return
	}

	slog.Info("Expenses replaced", "date", c.Param("date"), "count", len(expenses))
	c.JSON(http.StatusOK, gin.H{"message": "Expenses updated successfully"})
}

func pathDate(c *gin.Context) (time.Time, bool) {
	date, err := domain.ParseDay(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return date, false
	}
	return date, true
}

// === DTO ===

type ExpenseRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"gte=0"`
	Category string          `json:"category" validate:"required,category"`
	Notes    string          `json:"notes" validate:"max=1000"`
}

type ExpenseResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Notes    string          `json:"notes"`
}

type DatedExpenseResponse struct {
	Date string `json:"expense_date"`
	ExpenseResponse
}
