package domain

import (
	"testing"
	"time"
)

func TestPromotionStateAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	p := Promotion{StartsAt: start, EndsAt: end}

	cases := []struct {
		now  time.Time
		want PromotionState
	}{
		{start.Add(-time.Second), PromotionScheduled},
		{start, PromotionActive},
		{start.Add(24 * time.Hour), PromotionActive},
		{end, PromotionActive},
		{end.Add(time.Second), PromotionFinished},
	}
	for _, tc := range cases {
		if got := p.StateAt(tc.now); got != tc.want {
			t.Errorf("StateAt(%s) = %s, want %s", tc.now, got, tc.want)
		}
	}
}
