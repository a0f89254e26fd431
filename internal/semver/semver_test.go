package semver

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	for _, raw := range []string{"0.0.0", "1.2.3", "0.1.0", "10.0.0", "1.10.0", "2026.2.26"} {
		v, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", raw, err)
		}
		if v.String() != raw {
			t.Errorf("Parse(%q).String() = %q", raw, v.String())
		}
	}
}

func TestParseRejectsSuffixesAndJunk(t *testing.T) {
	bad := []string{
		"", "1", "1.2", "1.2.3.4", "1.2.", ".2.3", "1..3",
		"1.2.3-rc1", "1.2.3+build5", "1.2.3-rc1+build5",
		"v1.2.3", "a.b.c", "1.2.x", " 1.2.3",
	}
	for _, raw := range bad {
		_, err := Parse(raw)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error", raw)
			continue
		}
		var invalid *InvalidVersionError
		if !errors.As(err, &invalid) {
			t.Errorf("Parse(%q) error = %v, want InvalidVersionError", raw, err)
		} else if invalid.Input != raw {
			t.Errorf("Parse(%q) error names %q", raw, invalid.Input)
		}
	}
}

func TestCompareIsNumericNotLexical(t *testing.T) {
	a := MustParse("1.2.0")
	b := MustParse("1.10.0")
	if !a.Less(b) {
		t.Errorf("want 1.2.0 < 1.10.0")
	}
	if MustParse("9.0.0").Compare(MustParse("10.0.0")) >= 0 {
		t.Errorf("want 9.0.0 < 10.0.0")
	}
}

func TestCompareTotalOrder(t *testing.T) {
	ordered := []Version{
		MustParse("0.0.1"),
		MustParse("0.1.0"),
		MustParse("0.1.1"),
		MustParse("1.0.0"),
		MustParse("1.0.10"),
		MustParse("1.2.0"),
		MustParse("1.10.0"),
		MustParse("2.0.0"),
	}
	for i := range ordered {
		for j := range ordered {
			got := ordered[i].Compare(ordered[j])
			switch {
			case i < j && got >= 0:
				t.Errorf("%s.Compare(%s) = %d, want < 0", ordered[i], ordered[j], got)
			case i == j && got != 0:
				t.Errorf("%s.Compare(%s) = %d, want 0", ordered[i], ordered[j], got)
			case i > j && got <= 0:
				t.Errorf("%s.Compare(%s) = %d, want > 0", ordered[i], ordered[j], got)
			}
		}
	}
}

func TestStripTagPrefix(t *testing.T) {
	cases := []struct {
		label  string
		marker byte
		bare   string
	}{
		{"1.2.3", 0, "1.2.3"},
		{"v1.2.3", 'v', "1.2.3"},
		{"-0.2.0", '-', "0.2.0"},
		{"", 0, ""},
	}
	for _, tc := range cases {
		marker, bare := StripTagPrefix(tc.label)
		if marker != tc.marker || bare != tc.bare {
			t.Errorf("StripTagPrefix(%q) = (%q, %q), want (%q, %q)",
				tc.label, string(marker), bare, string(tc.marker), tc.bare)
		}
	}
}

func TestEqualIgnoresLabelSpelling(t *testing.T) {
	_, bare := StripTagPrefix("v1.0.0")
	a := MustParse(bare)
	b := MustParse("1.0.0")
	if !a.Equal(b) {
		t.Errorf("prefix-stripped version should equal plain version")
	}
}
