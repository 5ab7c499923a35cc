package mapping

import "testing"

func TestApplyTransform(t *testing.T) {
	cases := []struct {
		value, kind, config string
		want                string
		wantErr             bool
	}{
		{"abc", "none", "", "abc", false},
		{"abc", "", "", "abc", false},
		{"abc", "uppercase", "", "ABC", false},
		{"AbC", "lowercase", "", "abc", false},
		{"  x  ", "trim", "", "x", false},
		{"31.12.2024", "format_date", "", "2024-12-31", false},
		{"2024-12-31", "format_date", `{"to":"2006-01"}`, "2024-12", false},
		{"12/2024", "format_date", `{"from":["01/2006"],"to":"2006-01"}`, "2024-12", false},
		{"not-a-date", "format_date", "", "", true},
		{"x", "shuffle", "", "", true},
		{"", "uppercase", "", "", false}, // empty passes through
		{"keep", "lookup", "", "keep", false},
	}
	for _, c := range cases {
		got, err := ApplyTransform(c.value, c.kind, c.config)
		if c.wantErr {
			if err == nil {
				t.Errorf("ApplyTransform(%q, %s) expected error", c.value, c.kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("ApplyTransform(%q, %s) unexpected error: %v", c.value, c.kind, err)
			continue
		}
		if got != c.want {
			t.Errorf("ApplyTransform(%q, %s) = %q, want %q", c.value, c.kind, got, c.want)
		}
	}
}
