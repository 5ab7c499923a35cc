package models

import (
	"time"
	"unicode/utf8"
)

// Run statuses shared by SyncRun and TransferRun.
const (
	RunStatusPending = "pending"
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// MaxRunErrorLength caps persisted error text on run records.
const MaxRunErrorLength = 2000

// SyncRun is one execution record of a staging refresh. Append-only except for
// the status transition and metrics written at completion.
type SyncRun struct {
	ID           uint       `gorm:"primaryKey;column:id" json:"id"`
	QueryID      uint       `gorm:"column:query_id;index" json:"query_id"`
	RunUID       string     `gorm:"column:run_uid;size:36" json:"run_uid"`
	Status       string     `gorm:"column:status" json:"status"`
	StartedAt    time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt   *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	TotalRows    int        `gorm:"column:total_rows" json:"total_rows"`
	InsertedRows int        `gorm:"column:inserted_rows" json:"inserted_rows"`
	ErrorMessage string     `gorm:"column:error_message;size:2000" json:"error_message,omitempty"`
	TriggeredBy  string     `gorm:"column:triggered_by" json:"triggered_by"`
}

// TableName specifies the static table name for GORM.
func (SyncRun) TableName() string {
	return "sync_runs"
}

// TruncateRunError bounds error text to the persisted column size, backing up
// to a rune boundary so a multi-byte character is never cut in half.
func TruncateRunError(msg string) string {
	if len(msg) <= MaxRunErrorLength {
		return msg
	}
	cut := MaxRunErrorLength
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}
