package scheduler

import (
	"testing"

	"github.com/robfig/cron"

	"databridgeapi/models"
)

func TestBuildCronSpec(t *testing.T) {
	cases := []struct {
		name  string
		sched models.Schedule
		want  string
	}{
		{"hourly", models.Schedule{Frequency: models.FrequencyHourly, Minute: 15}, "15 * * * *"},
		{"every 4 hours", models.Schedule{Frequency: models.FrequencyHourly, IntervalHours: 4, Minute: 30}, "30 */4 * * *"},
		{"daily", models.Schedule{Frequency: models.FrequencyDaily, Hour: 2, Minute: 45}, "45 2 * * *"},
		{"weekly sunday", models.Schedule{Frequency: models.FrequencyWeekly, DayOfWeek: 0, Hour: 6}, "0 6 * * 0"},
		{"monthly", models.Schedule{Frequency: models.FrequencyMonthly, DayOfMonth: 15, Hour: 1, Minute: 5}, "5 1 15 * *"},
		{"monthly defaults day", models.Schedule{Frequency: models.FrequencyMonthly, Hour: 1}, "0 1 1 * *"},
		{"cron passthrough", models.Schedule{Frequency: models.FrequencyCron, CronExpr: "*/10 * * * *"}, "*/10 * * * *"},
	}
	for _, c := range cases {
		got, err := BuildCronSpec(&c.sched)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: expected %q, got %q", c.name, c.want, got)
		}
		if _, err := cron.ParseStandard(got); err != nil {
			t.Errorf("%s: generated spec %q does not parse: %v", c.name, got, err)
		}
	}
}

func TestBuildCronSpec_Rejections(t *testing.T) {
	if _, err := BuildCronSpec(&models.Schedule{Frequency: models.FrequencyManual}); err == nil {
		t.Errorf("Expected error for manual frequency")
	}
	if _, err := BuildCronSpec(&models.Schedule{Frequency: models.FrequencyCron}); err == nil {
		t.Errorf("Expected error for empty cron expression")
	}
}
