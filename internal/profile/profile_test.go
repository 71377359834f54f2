package profile

import (
	"encoding/json"
	"os"
	"reflect"
	"testing"
)

func TestProfilesExclude(t *testing.T) {
	profiles := &Profiles{Items: []*Profile{{ID: "1"}, {ID: "2"}, {ID: "3"}}}

	removed := profiles.Exclude([]string{"2", "9"})

	if !reflect.DeepEqual(removed, []string{"2"}) {
		t.Fatalf("unexpected removed ids: %v", removed)
	}
	if !reflect.DeepEqual(profiles.IDs(), []string{"1", "3"}) {
		t.Fatalf("expected order to be preserved, got %v", profiles.IDs())
	}
	if profiles.FindByID("3") == nil || profiles.FindByID("2") != nil {
		t.Fatalf("unexpected lookup results")
	}
}

func TestProfilesDumpToTmpFile(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	profiles := &Profiles{Items: []*Profile{{ID: "A", Name: "Priya"}, {ID: "B", Name: NameNotProvided}}}

	name, err := profiles.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var decoded []*Profile
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Name != "Priya" || decoded[1].ID != "B" {
		t.Fatalf("unexpected dump: %+v", decoded)
	}
}
