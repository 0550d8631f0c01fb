package daily

import (
	"strings"
	"testing"
	"time"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc) // 2026-03-01 19:00 UTC
	if got := DateKey(ts); got != "2026-03-01" {
		t.Fatalf("DateKey = %s", got)
	}
}

func TestSeedStablePerDay(t *testing.T) {
	morning := time.Date(2026, 5, 4, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 5, 4, 23, 59, 0, 0, time.UTC)
	nextDay := morning.Add(24 * time.Hour)

	a, err := Seed(morning, "salt")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Seed(evening, "salt")
	c, _ := Seed(nextDay, "salt")
	d, _ := Seed(morning, "other")

	if a != b {
		t.Errorf("same day, different seeds: %d vs %d", a, b)
	}
	if a == c {
		t.Errorf("consecutive days share seed %d", a)
	}
	if a == d {
		t.Errorf("salt does not affect seed")
	}
	if a == 0 {
		t.Errorf("seed must be non-zero")
	}
}

func TestSeedRejectsLongSalt(t *testing.T) {
	if _, err := Seed(time.Now(), strings.Repeat("x", 65)); err == nil {
		t.Fatal("expected error for 65-byte salt")
	}
}
