package models

import "time"

// Schedule frequencies.
const (
	FrequencyManual  = "manual"
	FrequencyHourly  = "hourly"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyCron    = "cron"
)

// Schedule is the durable recurring-run definition for a transfer. The
// in-memory trigger is recomputed from it on registration and at startup.
type Schedule struct {
	ID            uint       `gorm:"primaryKey;column:id" json:"id"`
	TransferID    uint       `gorm:"column:transfer_id;unique" json:"transfer_id" validate:"required"`
	Frequency     string     `gorm:"column:frequency" json:"frequency" validate:"required,oneof=manual hourly daily weekly monthly cron"`
	IntervalHours int        `gorm:"column:interval_hours;default:1" json:"interval_hours"` // hourly: fire every N hours
	DayOfWeek     int        `gorm:"column:day_of_week" json:"day_of_week"`                 // weekly: 0=Sunday
	DayOfMonth    int        `gorm:"column:day_of_month;default:1" json:"day_of_month"`     // monthly
	Hour          int        `gorm:"column:hour" json:"hour"`
	Minute        int        `gorm:"column:minute" json:"minute"`
	CronExpr      string     `gorm:"column:cron_expr" json:"cron_expr"` // 5-field cron expression
	Enabled       bool       `gorm:"column:enabled;default:true" json:"enabled"`
	LastRunAt     *time.Time `gorm:"column:last_run_at" json:"last_run_at,omitempty"`
	NextRunAt     *time.Time `gorm:"column:next_run_at" json:"next_run_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (Schedule) TableName() string {
	return "schedules"
}
