// Package queue defines message payloads exchanged over the message broker.
package queue

// Audit event kinds published by the write path.
const (
	KindReportCreated  = "report.created"
	KindReportApproved = "report.approved"
	KindAccountRemoved = "account.removed"
)

// AuditEvent is published whenever an entity is created, approved or
// removed. It replaces in-process lifecycle hooks: downstream
// consumers can log or trigger analytics without touching the primary
// database.
type AuditEvent struct {
	Kind       string `json:"kind"`
	AccountID  uint64 `json:"account_id"`
	ReportID   uint64 `json:"report_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
