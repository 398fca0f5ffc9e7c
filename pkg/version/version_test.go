package version

import (
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Firmware
		wantErr bool
	}{
		{"2.5.1", Firmware{2, 5, 1}, false},
		{"2.5.1.abcdef", Firmware{2, 5, 1}, false},
		{"2.3", Firmware{2, 3, 0}, false},
		{"10.0.99", Firmware{10, 0, 99}, false},
		{"", Firmware{}, true},
		{"2", Firmware{}, true},
		{"v2.5", Firmware{}, true},
		{"2.x", Firmware{}, true},
	}

	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"2.5.1", "2.5.1", 0},
		{"2.5.0", "2.5.1", -1},
		{"2.6.0", "2.5.9", 1},
		{"3.0.0", "2.9.9", 1},
		{"1.9.9", "2.0.0", -1},
	}

	for _, c := range cases {
		a, _ := Parse(c.a)
		b, _ := Parse(c.b)
		if got := a.Compare(b); got != c.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := a.AtLeast(b); got != (c.want >= 0) {
			t.Errorf("AtLeast(%s, %s) = %v", c.a, c.b, got)
		}
	}
}

func TestSupported(t *testing.T) {
	if !Supported("2.5.1.abcdef") {
		t.Error("recent firmware should be supported")
	}
	if Supported("2.2.9") {
		t.Error("firmware below the minimum should not be supported")
	}
	// Unparseable versions never warn.
	if !Supported("custom-build") {
		t.Error("unparseable firmware should count as supported")
	}
	if !Supported("") {
		t.Error("empty firmware should count as supported")
	}
}

func TestString(t *testing.T) {
	v := Firmware{2, 5, 1}
	if got := v.String(); got != "2.5.1" {
		t.Errorf("String() = %q, want 2.5.1", got)
	}
}
