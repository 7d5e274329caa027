// Package valuation estimates a car's price from comparable historical
// sale reports.
package valuation

import (
	"context"
	"errors"
	"sort"

	"github.com/roadprice/valuation/internal/model"
)

// Window bounds for admitting a comparable report: year within ±3 of
// the query, longitude and latitude within ±5, all inclusive. Coarse
// boxes, not great-circle distance.
const (
	yearWindow  = 3
	coordWindow = 5.0
)

// comparableLimit caps how many ranked reports feed the average.
const comparableLimit = 3

// ErrNoComparableReports is returned when no approved report survives
// the window filter. The mean of zero reports is undefined; callers
// decide how to present that instead of receiving NaN or a silent 0.
var ErrNoComparableReports = errors.New("no comparable reports")

// ReportSource supplies approved reports for an exact make/model pair.
// Matching is case-sensitive as stored.
type ReportSource interface {
	FindApproved(ctx context.Context, make, carModel string) ([]model.Report, error)
}

// Query carries the car attributes an estimate is requested for. It is
// transient input, never persisted.
type Query struct {
	Make    string
	Model   string
	Year    int
	Lng     float64
	Lat     float64
	Mileage int64
}

// Engine computes price estimates. It is stateless; all report data
// comes from the source per call.
type Engine struct {
	reports ReportSource
}

func NewEngine(reports ReportSource) *Engine {
	return &Engine{reports: reports}
}

// Estimate filters approved make/model matches to the year/location
// window, ranks them by absolute mileage difference in DESCENDING
// order, and averages the price of the top 3.
//
// Descending means the farthest mileage matches win, which inverts the
// usual nearest-neighbor ranking. The behavior is kept exactly as the
// product defined it; do not flip the sort without a product decision.
func (e *Engine) Estimate(ctx context.Context, q Query) (float64, error) {
	reports, err := e.reports.FindApproved(ctx, q.Make, q.Model)
	if err != nil {
		return 0, err
	}

	candidates := reports[:0:0]
	for _, r := range reports {
		if !inWindow(r, q) {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return 0, ErrNoComparableReports
	}

	// Stable so equal mileage differences keep their store order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return mileageDiff(candidates[i], q) > mileageDiff(candidates[j], q)
	})
	if len(candidates) > comparableLimit {
		candidates = candidates[:comparableLimit]
	}

	var sum float64
	for _, r := range candidates {
		sum += r.Price
	}
	return sum / float64(len(candidates)), nil
}

func inWindow(r model.Report, q Query) bool {
	return abs(float64(r.Year-q.Year)) <= yearWindow &&
		abs(r.Lng-q.Lng) <= coordWindow &&
		abs(r.Lat-q.Lat) <= coordWindow
}

func mileageDiff(r model.Report, q Query) int64 {
	d := r.Mileage - q.Mileage
	if d < 0 {
		return -d
	}
	return d
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
