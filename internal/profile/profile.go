// Package profile turns upstream matrimony search records into canonical profiles.
package profile

import (
	"encoding/json"
	"os"
)

const (
	// NameNotProvided replaces an absent display name.
	NameNotProvided = "Name not provided"
	// NotSpecified is used by derived labels when the source field is absent.
	NotSpecified = "Not specified"
	// NoIncome is the upstream literal for profiles without declared income.
	NoIncome = "No Income"

	TagNearby     = "Nearby"
	TagJustJoined = "Just Joined"
)

// RawRecord is a single profile as returned by the upstream search API.
type RawRecord map[string]any

// Profile is the canonical, stable-shape representation of a profile.
// Absent text fields are empty strings and absent numbers are nil; every field
// is always serialized.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Age      *int   `json:"age"`
	Height   string `json:"height"`

	Education  string `json:"education"`
	Occupation string `json:"occupation"`
	Company    string `json:"company"`
	College    string `json:"college"`
	Income     string `json:"income"`

	Location        string `json:"location"`
	CurrentLocation string `json:"currentLocation"`

	Religion     string `json:"religion"`
	Caste        string `json:"caste"`
	Subcaste     string `json:"subcaste"`
	MotherTongue string `json:"motherTongue"`

	MaritalStatus string `json:"maritalStatus"`
	ManagedBy     string `json:"managedBy"`
	Diet          string `json:"diet"`

	Photos     []string `json:"photos"`
	AlbumCount int      `json:"albumCount"`
	HasVideo   bool     `json:"hasVideo"`

	IsVerified        bool     `json:"isVerified"`
	VerificationSeals []string `json:"verificationSeals"`

	MatchScore     *int   `json:"matchScore"`
	ProfileTag     string `json:"profileTag"`
	MostCompatible bool   `json:"mostCompatible"`

	IsOnline   bool   `json:"isOnline"`
	LastOnline string `json:"lastOnline"`

	SubscriptionType string `json:"subscriptionType"`

	AgeGroup       string `json:"ageGroup"`
	EducationLevel string `json:"educationLevel"`
	IncomeRange    string `json:"incomeRange"`
	IsNearby       bool   `json:"isNearby"`
	IsJustJoined   bool   `json:"isJustJoined"`
}

// HasPhotos reports whether at least one photo URL is attached.
func (p *Profile) HasPhotos() bool {
	return len(p.Photos) > 0
}

// Profiles is an ordered list of canonical profiles.
type Profiles struct {
	Items []*Profile
}

func (p *Profiles) Len() int {
	return len(p.Items)
}

func (p *Profiles) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (p *Profiles) FindByID(id string) *Profile {
	for _, item := range p.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Keep retains profiles for which keep returns true, preserving order, and
// returns the ids of removed profiles.
func (p *Profiles) Keep(keep func(*Profile) bool) []string {
	var removed []string
	kept := p.Items[:0]
	for _, item := range p.Items {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		removed = append(removed, item.ID)
	}
	p.Items = kept
	return removed
}

// Exclude removes profiles whose id is listed in ids.
func (p *Profiles) Exclude(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return p.Keep(func(item *Profile) bool {
		_, found := set[item.ID]
		return !found
	})
}

// DumpToTmpFile writes the profiles as indented JSON to a new temporary file
// and returns its name.
func (p *Profiles) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "profiles_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
