package model

import "time"

// Report represents a row in the `reports` table: one historical car
// sale submitted by an account. Reports enter the valuation corpus
// only once an admin flips Approved; every other field is immutable
// after creation.
//
// Fields:
//  ID        – primary key identifier.
//  Make      – manufacturer, matched case-sensitively by the engine.
//  Model     – model name, matched case-sensitively by the engine.
//  Year      – model year of the sold car.
//  Lng, Lat  – sale location coordinates.
//  Mileage   – odometer reading at sale time.
//  Price     – sale price.
//  Approved  – whether an admin admitted the report into the corpus.
//  OwnerID   – account that submitted the report.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Report struct {
	ID        uint64    `json:"id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Lng       float64   `json:"lng"`
	Lat       float64   `json:"lat"`
	Mileage   int64     `json:"mileage"`
	Price     float64   `json:"price"`
	Approved  bool      `json:"approved"`
	OwnerID   uint64    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
