package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/roadprice/valuation/internal/model"
)

// ReportRepo provides access to the `reports` table.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

const reportColumns = "id,make,model,year,lng,lat,mileage,price,approved,owner_id,created_at,updated_at"

// Create inserts a report and fills in its generated id. Reports are
// born unapproved regardless of what the caller set.
func (r *ReportRepo) Create(ctx context.Context, rep *model.Report) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reports (make, model, year, lng, lat, mileage, price, approved, owner_id) VALUES (?,?,?,?,?,?,?,FALSE,?)",
		rep.Make, rep.Model, rep.Year, rep.Lng, rep.Lat, rep.Mileage, rep.Price, rep.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	rep.Approved = false
	log.Printf("reports: created id=%d owner=%d make=%s model=%s", rep.ID, rep.OwnerID, rep.Make, rep.Model)
	return nil
}

// FindByID fetches a report by id. A missing row is (nil, nil).
func (r *ReportRepo) FindByID(ctx context.Context, id uint64) (*model.Report, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM reports WHERE id=? LIMIT 1", id)
	rep, err := scanReport(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// FindByOwner lists the reports submitted by one account.
func (r *ReportRepo) FindByOwner(ctx context.Context, ownerID uint64) ([]model.Report, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE owner_id=? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

// FindApproved returns approved reports matching make and model
// exactly. BINARY forces case-sensitive comparison regardless of the
// column collation.
func (r *ReportRepo) FindApproved(ctx context.Context, mk, mdl string) ([]model.Report, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE approved=TRUE AND make=BINARY ? AND model=BINARY ? ORDER BY id",
		mk, mdl)
	if err != nil {
		return nil, err
	}
	return collectReports(rows)
}

// Save persists the approval flag. Everything else about a report is
// immutable after creation.
func (r *ReportRepo) Save(ctx context.Context, rep *model.Report) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE reports SET approved=? WHERE id=?", rep.Approved, rep.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if existing, ferr := r.FindByID(ctx, rep.ID); ferr == nil && existing == nil {
			return ErrReportNotFound
		}
	}
	log.Printf("reports: updated id=%d approved=%t", rep.ID, rep.Approved)
	return nil
}

func collectReports(rows *sql.Rows) ([]model.Report, error) {
	defer rows.Close()
	var out []model.Report
	for rows.Next() {
		rep, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func scanReport(scan func(...any) error) (model.Report, error) {
	var rep model.Report
	err := scan(&rep.ID, &rep.Make, &rep.Model, &rep.Year, &rep.Lng, &rep.Lat,
		&rep.Mileage, &rep.Price, &rep.Approved, &rep.OwnerID, &rep.CreatedAt, &rep.UpdatedAt)
	return rep, err
}
