package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roadprice/valuation/internal/model"
	"github.com/roadprice/valuation/internal/queue"
	"github.com/roadprice/valuation/internal/repository"
	queue_publisher "github.com/roadprice/valuation/internal/service"
	"github.com/roadprice/valuation/internal/valuation"
)

// ReportHandler bundles dependencies for report endpoints.
type ReportHandler struct {
	Reports   ReportStore
	Valuation *valuation.Engine
}

func NewReportHandler(reports ReportStore, engine *valuation.Engine) *ReportHandler {
	return &ReportHandler{Reports: reports, Valuation: engine}
}

// ----- DTOs -----

type createReportReq struct {
	Make    string  `json:"make"`
	Model   string  `json:"model"`
	Year    int     `json:"year"`
	Lng     float64 `json:"lng"`
	Lat     float64 `json:"lat"`
	Mileage int64   `json:"mileage"`
	Price   float64 `json:"price"`
}

type approveReportReq struct {
	Approved bool `json:"approved"`
}

type estimateReq struct {
	Make    string  `query:"make"`
	Model   string  `query:"model"`
	Year    int     `query:"year"`
	Lng     float64 `query:"lng"`
	Lat     float64 `query:"lat"`
	Mileage int64   `query:"mileage"`
}

// Create handles POST /v1/reports: a sale report owned by the caller,
// born unapproved.
func (h *ReportHandler) Create(c echo.Context) error {
	acct, err := callerAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Make == "" || req.Model == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "make/model required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	report := &model.Report{
		Make:    req.Make,
		Model:   req.Model,
		Year:    req.Year,
		Lng:     req.Lng,
		Lat:     req.Lat,
		Mileage: req.Mileage,
		Price:   req.Price,
		OwnerID: acct.ID,
	}
	if err := h.Reports.Create(ctx, report); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}
	publishAudit(queue.AuditEvent{
		Kind:      queue.KindReportCreated,
		AccountID: acct.ID,
		ReportID:  report.ID,
		Detail:    report.Make + " " + report.Model,
	})
	return c.JSON(http.StatusCreated, report)
}

// List handles GET /v1/reports and returns only the caller's reports.
func (h *ReportHandler) List(c echo.Context) error {
	acct, err := callerAccount(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	reports, err := h.Reports.FindByOwner(ctx, acct.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if reports == nil {
		reports = []model.Report{}
	}
	return c.JSON(http.StatusOK, reports)
}

// Approve handles PATCH /v1/reports/:id: admins flip the approved
// flag, admitting or evicting the report from the valuation corpus.
func (h *ReportHandler) Approve(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req approveReportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	report, err := h.Reports.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if report == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	}

	report.Approved = req.Approved
	if err := h.Reports.Save(ctx, report); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	publishAudit(queue.AuditEvent{
		Kind:      queue.KindReportApproved,
		AccountID: report.OwnerID,
		ReportID:  report.ID,
		Detail:    "approved=" + strconv.FormatBool(report.Approved),
	})
	return c.JSON(http.StatusOK, report)
}

// Estimate handles GET /v1/reports/estimate, the public valuation
// lookup. When nothing comparable exists the price is null, never a
// silent zero.
func (h *ReportHandler) Estimate(c echo.Context) error {
	var req estimateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query"})
	}
	if req.Make == "" || req.Model == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "make/model required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	price, err := h.Valuation.Estimate(ctx, valuation.Query{
		Make:    req.Make,
		Model:   req.Model,
		Year:    req.Year,
		Lng:     req.Lng,
		Lat:     req.Lat,
		Mileage: req.Mileage,
	})
	if errors.Is(err, valuation.ErrNoComparableReports) {
		return c.JSON(http.StatusOK, echo.Map{"price": nil})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "estimate failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"price": price})
}

// publishAudit fires an audit event without blocking the response. A
// broker outage only costs the event; the publisher already logs it.
func publishAudit(ev queue.AuditEvent) {
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue_publisher.PublishAudit(ctx, ev); err != nil {
			log.Printf("audit publish dropped: kind=%s", ev.Kind)
		}
	}()
}
