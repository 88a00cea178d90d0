package calc

import "testing"

func TestElapsed(t *testing.T) {
	tests := []struct {
		name        string
		start, end  string
		hours, mins int
		decimal     float64
	}{
		{"same day", "08:00", "17:00", 9, 0, 9},
		{"with minutes", "08:15", "17:45", 9, 30, 9.5},
		{"crosses midnight", "22:00", "06:00", 8, 0, 8},
		{"crosses midnight with minutes", "23:30", "00:15", 0, 45, 0.75},
		{"equal times treated as full day", "09:00", "09:00", 24, 0, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m, dec := Elapsed(tt.start, tt.end)
			if h != tt.hours || m != tt.mins {
				t.Fatalf("Elapsed(%s, %s) = %d ч %d мин, expected %d ч %d мин", tt.start, tt.end, h, m, tt.hours, tt.mins)
			}
			if dec != tt.decimal {
				t.Fatalf("decimal = %v, expected %v", dec, tt.decimal)
			}
		})
	}
}

func TestElapsedAlwaysPositiveAndBounded(t *testing.T) {
	pairs := [][2]string{{"23:59", "00:00"}, {"12:00", "11:59"}, {"00:01", "00:00"}}
	for _, p := range pairs {
		_, _, dec := Elapsed(p[0], p[1])
		if dec <= 0 || dec > 24 {
			t.Fatalf("Elapsed(%s, %s) = %v, expected within (0, 24]", p[0], p[1], dec)
		}
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(1000, 1150); d != 150 {
		t.Fatalf("Distance = %v, expected 150", d)
	}
	if d := Distance(100.4, 100.4); d != 0 {
		t.Fatalf("Distance = %v, expected 0", d)
	}
}

func TestNormConsumption(t *testing.T) {
	if got := NormConsumption(200, 10); got != 20.0 {
		t.Fatalf("NormConsumption(200, 10) = %v, expected 20", got)
	}
	if got := NormConsumption(150, 12); got != 18.0 {
		t.Fatalf("NormConsumption(150, 12) = %v, expected 18", got)
	}
}

func TestOveruseByIdle(t *testing.T) {
	if got := OveruseByIdle(5, 2.0); got != 10.0 {
		t.Fatalf("OveruseByIdle(5, 2) = %v, expected 10", got)
	}
	if got := OveruseByIdle(1.5, 2.0); got != 3.0 {
		t.Fatalf("OveruseByIdle(1.5, 2) = %v, expected 3", got)
	}
}

func TestActualConsumption(t *testing.T) {
	if got := ActualConsumption(20, 10, 3); got != 27.0 {
		t.Fatalf("ActualConsumption(20, 10, 3) = %v, expected 27", got)
	}
}

func TestFuelBalance(t *testing.T) {
	if got := FuelBalance(50, 0, 27); got != 23.0 {
		t.Fatalf("FuelBalance(50, 0, 27) = %v, expected 23", got)
	}
	if got := FuelBalance(50, 10, 27); got != 33.0 {
		t.Fatalf("FuelBalance(50, 10, 27) = %v, expected 33", got)
	}
}

func TestBackDeriveRefuel(t *testing.T) {
	if got := BackDeriveRefuel(25, 19); got != 6.0 {
		t.Fatalf("BackDeriveRefuel(25, 19) = %v, expected 6", got)
	}
	// entered below the computed balance never yields a negative refuel
	if got := BackDeriveRefuel(15, 19); got != 0 {
		t.Fatalf("BackDeriveRefuel(15, 19) = %v, expected 0", got)
	}
}

func TestSpecificConsumption(t *testing.T) {
	if got := SpecificConsumption(21, 150); got != 14.0 {
		t.Fatalf("SpecificConsumption(21, 150) = %v, expected 14", got)
	}
	if got := SpecificConsumption(5, 0); got != 0 {
		t.Fatalf("SpecificConsumption with zero distance = %v, expected 0", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, out float64 }{
		{2.344, 2.34},
		{2.346, 2.35},
		{18, 18},
		{19.999999999999996, 20},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.out {
			t.Fatalf("Round2(%v) = %v, expected %v", tt.in, got, tt.out)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(9, 0); got != "9 ч" {
		t.Fatalf("FormatDuration(9, 0) = %q", got)
	}
	if got := FormatDuration(9, 30); got != "9 ч 30 мин" {
		t.Fatalf("FormatDuration(9, 30) = %q", got)
	}
}
