package mapping

import "testing"

func TestDerivePeriod(t *testing.T) {
	cases := []struct {
		code                 string
		year, month, quarter int
		wantErr              bool
	}{
		{"2024-01", 2024, 1, 1, false},
		{"2024-03", 2024, 3, 1, false},
		{"2024-04", 2024, 4, 2, false},
		{"2024-09", 2024, 9, 3, false},
		{"2024-12", 2024, 12, 4, false},
		{"202406", 2024, 6, 2, false},
		{" 2024-06 ", 2024, 6, 2, false},
		{"2024-13", 0, 0, 0, true},
		{"2024-00", 0, 0, 0, true},
		{"2024", 0, 0, 0, true},
		{"abcd-ef", 0, 0, 0, true},
	}
	for _, c := range cases {
		year, month, quarter, err := DerivePeriod(c.code)
		if c.wantErr {
			if err == nil {
				t.Errorf("DerivePeriod(%q) expected error", c.code)
			}
			continue
		}
		if err != nil {
			t.Errorf("DerivePeriod(%q) unexpected error: %v", c.code, err)
			continue
		}
		if year != c.year || month != c.month || quarter != c.quarter {
			t.Errorf("DerivePeriod(%q) = %d %d %d, want %d %d %d",
				c.code, year, month, quarter, c.year, c.month, c.quarter)
		}
	}
}
