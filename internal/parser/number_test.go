package parser

import "testing"

func TestCoerceNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   CellValue
		want float64
		ok   bool
	}{
		{Number(12.5), 12.5, true},
		{Text("1,234.5"), 1234.5, true},
		{Text("１２"), 12, true},
		{Text(" -3 "), -3, true},
		{Text(".5"), 0.5, true},
		{Text("1.2.3"), 0, false},
		{Text("abc"), 0, false},
		{Text("NaN"), 0, false},
		{Empty(), 0, false},
	}
	for _, c := range cases {
		got, ok := CoerceNumber(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("%#v: got %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestHoursValue(t *testing.T) {
	t.Parallel()

	if got := HoursValue(Text("8")); got != 8 {
		t.Fatalf("got %v", got)
	}
	if got := HoursValue(Number(-4)); got != 0 {
		t.Fatalf("negative hours should clamp to 0, got %v", got)
	}
	if got := HoursValue(Text("半日")); got != 0 {
		t.Fatalf("unparsable hours should be 0, got %v", got)
	}
}

func TestProgressValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   CellValue
		want float64
		ok   bool
	}{
		{Percent(0.5), 50, true},
		{Number(50), 50, true},
		{Text("75%"), 75, true},
		{Text("７５％"), 75, true},
		{Text("100"), 100, true},
		{Text("未着手"), 0, false},
		{Empty(), 0, false},
	}
	for _, c := range cases {
		got, ok := ProgressValue(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("%#v: got %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
