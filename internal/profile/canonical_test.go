package profile

import (
	"reflect"
	"testing"
)

func TestFromCanonicalMixedEncodings(t *testing.T) {
	p, err := FromCanonical(map[string]any{
		"id":         float64(1001),
		"age":        "28 yrs",
		"matchScore": float64(87),
		"income":     float64(1000000),
		"isVerified": "true",
		"isOnline":   float64(1),
		"hasVideo":   "no",
		"albumCount": "4",
		"photos":     "a.jpg",
		"education":  "MBA",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.ID != "1001" || p.Income != "1000000" {
		t.Fatalf("unexpected text fields: id=%q income=%q", p.ID, p.Income)
	}
	if deref(p.Age) != 28 || deref(p.MatchScore) != 87 {
		t.Fatalf("unexpected numbers: age=%v match=%v", p.Age, p.MatchScore)
	}
	if !p.IsVerified || !p.IsOnline || p.HasVideo {
		t.Fatalf("unexpected flags: %+v", p)
	}
	if p.AlbumCount != 4 || !reflect.DeepEqual(p.Photos, []string{"a.jpg"}) {
		t.Fatalf("unexpected media: %d %v", p.AlbumCount, p.Photos)
	}
	if p.EducationLevel != EducationLevel("MBA") || p.AgeGroup != AgeGroup(intPtr(28)) {
		t.Fatalf("derived attributes not recomputed: %+v", p)
	}
}

func TestFromCanonicalAbsentValues(t *testing.T) {
	p, err := FromCanonical(map[string]any{"age": "unknown"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Age != nil {
		t.Fatalf("expected absent age, got %d", *p.Age)
	}
	if p.Name != NameNotProvided || p.Photos == nil || p.VerificationSeals == nil {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	if _, err := FromCanonical(nil); err != nil {
		t.Fatalf("nil input must decode to an empty profile: %v", err)
	}
}
