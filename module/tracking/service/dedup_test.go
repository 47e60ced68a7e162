package service

import (
	"testing"
	"time"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

func TestIsDuplicate(t *testing.T) {
	f := NewDuplicateFilter()
	t0 := time.Unix(1715003456, 0)

	base := report(17.9869, -92.9303, t0)

	cases := []struct {
		name string
		next domain.LocationReport
		want bool
	}{
		{"same spot 30s later", report(17.9869, -92.9303, t0.Add(30*time.Second)), true},
		{"1m away 30s later", report(17.986901, -92.9303, t0.Add(30*time.Second)), true},
		{"same spot 2min later", report(17.9869, -92.9303, t0.Add(2*time.Minute)), false},
		{"20m away 30s later", report(17.98708, -92.9303, t0.Add(30*time.Second)), false},
		{"same spot 30s earlier", report(17.9869, -92.9303, t0.Add(-30*time.Second)), true},
	}
	for _, tc := range cases {
		if got := f.IsDuplicate(&base, &tc.next); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsDuplicate_NoPreviousReport(t *testing.T) {
	f := NewDuplicateFilter()
	r := report(17.9869, -92.9303, time.Unix(1715003456, 0))
	if f.IsDuplicate(nil, &r) {
		t.Fatal("first report can never be a duplicate")
	}
}
