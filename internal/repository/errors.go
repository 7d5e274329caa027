// Package repository implements MySQL persistence for accounts and
// reports. Sentinel errors defined here let handlers map storage
// failures to HTTP codes without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique email
// constraint. Handlers translate it into HTTP 400 on signup.
var ErrEmailExists = errors.New("account with this email already exists")

// ErrAccountNotFound is returned by account writes addressing an id
// that no longer exists. Handlers translate it into HTTP 404.
var ErrAccountNotFound = errors.New("account not found")

// ErrReportNotFound is returned by report writes addressing an id that
// does not exist. Handlers translate it into HTTP 404.
var ErrReportNotFound = errors.New("report not found")
