// internal/dashboard/dashboard.go
package dashboard

import (
	"context"
	"embed"
	"errors"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/export"
	"expense-tracker/internal/middleware"
	"expense-tracker/internal/report"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templatesFS embed.FS

// minRows — минимальное число строк в форме ввода, maxRows — потолок для поля rows
const (
	minRows = 5
	maxRows = 200
)

type API interface {
	Expenses(ctx context.Context, date time.Time) ([]Expense, error)
	SaveExpenses(ctx context.Context, date time.Time, expenses []Expense) error
	Breakdown(ctx context.Context, start, end time.Time) (domain.Breakdown, error)
	MonthlyBreakdown(ctx context.Context, start, end time.Time) (domain.MonthlyBreakdown, error)
}

type Dashboard struct {
	api API
	now func() time.Time
}

func New(api API) *Dashboard {
	return &Dashboard{api: api, now: time.Now}
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"bar": func(pct decimal.Decimal) int {
		w := int(pct.Round(0).IntPart())
		return min(max(w, 0), 100)
	},
}

// Router builds the dashboard's gin engine with the embedded templates.
func (d *Dashboard) Router() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")))

	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/add") })
	router.GET("/add", d.AddForm)
	router.POST("/add", d.SubmitAdd)
	router.GET("/analytics", d.Analytics)
	router.GET("/monthly", d.Monthly)
	router.GET("/monthly/export", d.MonthlyExport)
	return router
}

type formRow struct {
	Index    int
	Amount   string
	Category string
	Notes    string
}

func (d *Dashboard) AddForm(c *gin.Context) {
	date := d.queryDate(c, "date", d.today())

	existing, err := d.api.Expenses(c.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to retrieve expenses", "error", err, "date", date.Format(domain.DateLayout))
		existing = nil
	}

	total := max(len(existing), minRows)
	rows := make([]formRow, total)
	for i := range rows {
		rows[i] = formRow{Index: i, Amount: "0", Category: string(domain.CategoryShopping)}
		if i < len(existing) {
			rows[i].Amount = existing[i].Amount.String()
			rows[i].Category = existing[i].Category
			rows[i].Notes = existing[i].Notes
		}
	}

	errText := c.Query("error")
	if err != nil {
		errText = "Failed to retrieve expenses: " + apiMessage(err)
	}
	c.HTML(http.StatusOK, "add.html", gin.H{
		"Title":      "Add/Update",
		"Date":       date.Format(domain.DateLayout),
		"Rows":       rows,
		"Categories": domain.Categories(),
		"Saved":      c.Query("status") == "saved",
		"Error":      errText,
	})
}

func (d *Dashboard) SubmitAdd(c *gin.Context) {
	date, err := domain.ParseDay(c.PostForm("date"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/add?error="+url.QueryEscape("date must be in YYYY-MM-DD format"))
		return
	}
	back := "/add?date=" + date.Format(domain.DateLayout)

	n, err := strconv.Atoi(c.PostForm("rows"))
	if err != nil || n < 0 {
		n = minRows
	}
	n = min(n, maxRows)

	var expenses []Expense
	for i := 0; i < n; i++ {
		raw := c.PostForm(fmt.Sprintf("amount_%d", i))
		if raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			c.Redirect(http.StatusSeeOther, back+"&error="+url.QueryEscape(fmt.Sprintf("row %d: invalid amount %q", i+1, raw)))
			return
		}
		// строки с нулевой суммой отбрасываем
		if !amount.IsPositive() {
			continue
		}
		expenses = append(expenses, Expense{
			Amount:   amount,
			Category: c.PostForm(fmt.Sprintf("category_%d", i)),
			Notes:    c.PostForm(fmt.Sprintf("notes_%d", i)),
		})
	}

	if err := d.api.SaveExpenses(c.Request.Context(), date, expenses); err != nil {
		slog.Error("Failed to submit expenses", "error", err, "date", date.Format(domain.DateLayout))
		c.Redirect(http.StatusSeeOther, back+"&error="+url.QueryEscape("Failed to update/submit expenses: "+apiMessage(err)))
		return
	}
	c.Redirect(http.StatusSeeOther, back+"&status=saved")
}

func (d *Dashboard) Analytics(c *gin.Context) {
	start, end := d.rangeParams(c)
	data := gin.H{
		"Title": "Analytics",
		"Start": start.Format(domain.DateLayout),
		"End":   end.Format(domain.DateLayout),
	}

	if c.Query("start") != "" {
		breakdown, err := d.api.Breakdown(c.Request.Context(), start, end)
		if err != nil {
			data["Error"] = apiMessage(err)
		} else {
			data["Rows"] = report.Sorted(breakdown)
		}
	}
	c.HTML(http.StatusOK, "analytics.html", data)
}

func (d *Dashboard) Monthly(c *gin.Context) {
	start, end := d.rangeParams(c)
	percent := c.Query("percent") == "1"
	data := gin.H{
		"Title":   "Monthly Analytics",
		"Start":   start.Format(domain.DateLayout),
		"End":     end.Format(domain.DateLayout),
		"Percent": percent,
	}

	if c.Query("start") != "" {
		monthly, err := d.api.MonthlyBreakdown(c.Request.Context(), start, end)
		if err != nil {
			data["Error"] = apiMessage(err)
		} else {
			data["Table"] = report.Monthly(monthly, percent)
			q := url.Values{"start": {start.Format(domain.DateLayout)}, "end": {end.Format(domain.DateLayout)}}
			if percent {
				q.Set("percent", "1")
			}
			data["ExportURL"] = template.URL("/monthly/export?" + q.Encode())
		}
	}
	c.HTML(http.StatusOK, "monthly.html", data)
}

func (d *Dashboard) MonthlyExport(c *gin.Context) {
	start, end := d.rangeParams(c)

	monthly, err := d.api.MonthlyBreakdown(c.Request.Context(), start, end)
	if err != nil {
		status := http.StatusBadGateway
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		c.String(status, apiMessage(err))
		return
	}

	data, err := export.MonthlyWorkbook(report.Monthly(monthly, c.Query("percent") == "1"))
	if err != nil {
		slog.Error("Export failed", "error", err)
		c.String(http.StatusInternalServerError, "failed to build workbook")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, export.ContentType, data)
}

func (d *Dashboard) today() time.Time {
	return domain.Day(d.now())
}

// rangeParams — start/end из query, по умолчанию начало текущего месяца..сегодня
func (d *Dashboard) rangeParams(c *gin.Context) (time.Time, time.Time) {
	today := d.today()
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return d.queryDate(c, "start", first), d.queryDate(c, "end", today)
}

func (d *Dashboard) queryDate(c *gin.Context, key string, def time.Time) time.Time {
	if t, err := domain.ParseDay(c.Query(key)); err == nil {
		return t
	}
	return def
}

// apiMessage — текст ошибки API без статуса
func apiMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
