package report

import "testing"

func TestAbbrev(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		sig  int
		want string
	}{
		{"zero", 0, 3, "0"},
		{"small integer", 42, 3, "42"},
		{"thousands", 1234, 3, "1.23K"},
		{"millions", 1234567, 3, "1.23M"},
		{"billions", 5e9, 3, "5B"},
		{"trillions", 1.5e12, 3, "1.5T"},
		{"negative", -1234, 3, "-1.23K"},
		{"sub one", 0.012345, 3, "0.0123"},
		{"trailing zeros trimmed", 1000, 4, "1K"},
		{"sig floor", 1234, 0, "1K"},
		{"high precision price", 0.00004217, 5, "0.00004217"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Abbrev(tc.v, tc.sig); got != tc.want {
				t.Errorf("Abbrev(%v, %d) = %q, want %q", tc.v, tc.sig, got, tc.want)
			}
		})
	}
}

func TestAbbrevPtr(t *testing.T) {
	if got := AbbrevPtr(nil, 3); got != Unknown {
		t.Errorf("AbbrevPtr(nil) = %q, want %q", got, Unknown)
	}
	v := 2500.0
	if got := AbbrevPtr(&v, 3); got != "2.5K" {
		t.Errorf("AbbrevPtr(2500) = %q, want 2.5K", got)
	}
}
