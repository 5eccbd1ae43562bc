package location

import (
	"reflect"
	"strings"
	"testing"

	"github.com/i474232898/weather-browser/internal/gazetteer"
)

func mustEntry(t *testing.T, raw string) gazetteer.Entry {
	t.Helper()
	e, err := gazetteer.ParseEntry(0, raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return e
}

func TestPlanThreeSegments(t *testing.T) {
	got := Plan(mustEntry(t, "서울특별시-종로구-청운동"))
	want := []string{"청운동, 종로구, 서울", "종로구, 서울", "종로구", "서울"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %#v, want %#v", got, want)
	}
}

func TestPlanTwoSegments(t *testing.T) {
	got := Plan(mustEntry(t, "경기도-가평군"))
	want := []string{"가평군, 경기", "가평군", "경기"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %#v, want %#v", got, want)
	}
}

func TestPlanSingleSegment(t *testing.T) {
	got := Plan(mustEntry(t, "부산광역시"))
	want := []string{"부산", "부산광역시"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Plan = %#v, want %#v", got, want)
	}

	// Nothing to strip: the single candidate is not duplicated.
	got = Plan(mustEntry(t, "Seoul"))
	if !reflect.DeepEqual(got, []string{"Seoul"}) {
		t.Fatalf("Plan = %#v", got)
	}
}

func TestPlanEmptyEntry(t *testing.T) {
	if got := Plan(gazetteer.Entry{}); got != nil {
		t.Fatalf("Plan of empty entry = %#v, want nil", got)
	}
}

func TestNormalizeRegion(t *testing.T) {
	cases := map[string]string{
		"서울특별시":   "서울",
		"부산광역시":   "부산",
		"세종특별자치시": "세종",
		"제주특별자치도": "제주",
		"경기도":     "경기",
		"도":       "도",
		"가평군":     "가평군",
	}
	for in, want := range cases {
		if got := NormalizeRegion(in); got != want {
			t.Fatalf("NormalizeRegion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlanFirstCandidateIsMostSpecific(t *testing.T) {
	ix, err := gazetteer.Default()
	if err != nil {
		t.Fatalf("default gazetteer: %v", err)
	}
	for id := 0; id < ix.Len(); id++ {
		e, _ := ix.Get(id)
		plan := Plan(e)
		if len(plan) == 0 {
			t.Fatalf("empty plan for %q", e.DisplayName)
		}
		first := strings.Count(plan[0], ",") + 1
		for _, q := range plan[1:] {
			if n := strings.Count(q, ",") + 1; n > first {
				t.Fatalf("%q: candidate %q is more specific than first %q", e.DisplayName, q, plan[0])
			}
		}
		if first != min(e.Depth(), 3) {
			t.Fatalf("%q: first candidate %q should carry %d segments", e.DisplayName, plan[0], e.Depth())
		}
	}
}
