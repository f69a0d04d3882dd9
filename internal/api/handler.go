package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"sales-segmentation/internal/domain"
	"sales-segmentation/internal/usecase"
	"sales-segmentation/internal/writer"
)

const version = "1.0.0"

// ReportBuilder builds a segmentation report for one period.
//
//go:generate mockgen -destination=mocks/mock_handler.go -source=handler.go
type ReportBuilder interface {
	BuildSegmentation(ctx context.Context, year int, months domain.MonthRange, asOf time.Time) (*domain.SegmentationReport, error)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	builder ReportBuilder
	cache   *periodCache
	now     func() time.Time
}

// NewHandler creates a handler. Closed periods are cached for cacheTTL.
func NewHandler(builder ReportBuilder, cacheTTL time.Duration) *Handler {
	return &Handler{
		builder: builder,
		cache:   newPeriodCache(cacheTTL),
		now:     time.Now,
	}
}

// NewApp returns a fiber app with every route registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "sales-segmentation",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", HandleHealth)
	app.Get("/api/segmentation", h.HandleSegmentation)
}

// HandleHealth reports liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

type segmentationQuery struct {
	year   int
	months domain.MonthRange
	asOf   time.Time
	view   domain.View
	format string
}

// HandleSegmentation serves GET /api/segmentation?year=&from=&to=&as_of=&channel=&format=.
func (h *Handler) HandleSegmentation(c *fiber.Ctx) error {
	now := h.now().UTC()

	q, err := parseSegmentationQuery(c, now)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.report(c.UserContext(), q, now)
	if err != nil {
		var future *domain.FutureTransactionError
		switch {
		case errors.As(err, &future):
			return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, domain.ErrNoSourceConfigured):
			return writeError(c, fiber.StatusServiceUnavailable, err.Error())
		default:
			log.Printf("[ERROR] segmentation %d: %v", q.year, err)
			return writeError(c, fiber.StatusInternalServerError, "could not build segmentation report")
		}
	}

	if q.view != "" {
		report = usecase.FilterByChannel(report, q.view)
	}

	if q.format == "csv" {
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="segmentation_%d.csv"`, q.year))
		w := &writer.CSVWriter{IncludeHeader: true}
		return w.Write(c.Response().BodyWriter(), report)
	}
	return c.JSON(report)
}

func (h *Handler) report(ctx context.Context, q segmentationQuery, now time.Time) (*domain.SegmentationReport, error) {
	cacheable := isClosedPeriod(q.year, q.months, now)
	key := cacheKey(q.year, q.months, q.asOf)
	if cacheable {
		if r, ok := h.cache.get(key, now); ok {
			return r, nil
		}
	}

	r, err := h.builder.BuildSegmentation(ctx, q.year, q.months, q.asOf)
	if err != nil {
		return nil, err
	}
	if cacheable {
		h.cache.put(key, r, now)
	}
	return r, nil
}

func parseSegmentationQuery(c *fiber.Ctx, now time.Time) (segmentationQuery, error) {
	q := segmentationQuery{year: now.Year(), months: domain.FullYear}

	intParam := func(name string, dst *int) error {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", name, raw)
		}
		*dst = v
		return nil
	}

	from, to := int(q.months.From), int(q.months.To)
	if err := intParam("year", &q.year); err != nil {
		return q, err
	}
	if err := intParam("from", &from); err != nil {
		return q, err
	}
	if err := intParam("to", &to); err != nil {
		return q, err
	}
	if q.year < 1 {
		return q, fmt.Errorf("year must be positive, got %d", q.year)
	}
	q.months = domain.MonthRange{From: time.Month(from), To: time.Month(to)}
	if err := q.months.Validate(); err != nil {
		return q, err
	}

	_, end := q.months.Bounds(q.year)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	q.asOf = end
	if today.Before(end) {
		q.asOf = today
	}
	if raw := strings.TrimSpace(c.Query("as_of")); raw != "" {
		asOf, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return q, fmt.Errorf("as_of must be YYYY-MM-DD, got %q", raw)
		}
		q.asOf = asOf
	}

	if raw := c.Query("channel"); raw != "" {
		view, err := domain.ParseView(raw)
		if err != nil {
			return q, err
		}
		q.view = view
	}

	switch format := strings.ToLower(c.Query("format", "json")); format {
	case "json", "csv":
		q.format = format
	default:
		return q, fmt.Errorf("unknown format %q, use json or csv", format)
	}
	return q, nil
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Success: false, Error: msg})
}
