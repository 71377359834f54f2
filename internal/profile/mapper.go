package profile

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/match-advisor/internal/apperr"
)

var digitsRe = regexp.MustCompile(`\d+`)

// extractor pulls one candidate value out of a raw record.
type extractor func(RawRecord) (any, bool)

// key extracts a top-level field when it is present and not blank.
func key(name string) extractor {
	return func(r RawRecord) (any, bool) {
		v, ok := r[name]
		if !ok || isBlank(v) {
			return nil, false
		}
		return v, true
	}
}

// path extracts a nested field, e.g. path("media", "video").
func path(keys ...string) extractor {
	return func(r RawRecord) (any, bool) {
		var current any = map[string]any(r)
		for _, k := range keys {
			m, ok := asMap(current)
			if !ok {
				return nil, false
			}
			current, ok = m[k]
			if !ok {
				return nil, false
			}
		}
		if isBlank(current) {
			return nil, false
		}
		return current, true
	}
}

// keys builds the ordered candidate list for a field with upstream synonyms.
func keys(names ...string) []extractor {
	out := make([]extractor, 0, len(names))
	for _, name := range names {
		out = append(out, key(name))
	}
	return out
}

func resolve(r RawRecord, candidates []extractor) (any, bool) {
	for _, candidate := range candidates {
		if v, ok := candidate(r); ok {
			return v, true
		}
	}
	return nil, false
}

type textField struct {
	from []extractor
	set  func(p *Profile, v string)
}

// textFields lists every plain text field in resolution priority order.
var textFields = []textField{
	{keys("profileid", "profile_id", "id"), func(p *Profile, v string) { p.ID = v }},
	{keys("username"), func(p *Profile, v string) { p.Username = v }},
	{keys("name_of_user", "name"), func(p *Profile, v string) { p.Name = v }},
	{keys("height"), func(p *Profile, v string) { p.Height = v }},
	{keys("edu_level_new", "highestEducation"), func(p *Profile, v string) { p.Education = v }},
	{keys("occupation"), func(p *Profile, v string) { p.Occupation = v }},
	{keys("company_name"), func(p *Profile, v string) { p.Company = v }},
	{keys("college", "pg_college"), func(p *Profile, v string) { p.College = v }},
	{keys("income"), func(p *Profile, v string) { p.Income = v }},
	{keys("location"), func(p *Profile, v string) { p.Location = v }},
	{keys("current_location"), func(p *Profile, v string) { p.CurrentLocation = v }},
	{keys("religion"), func(p *Profile, v string) { p.Religion = v }},
	{keys("caste", "newCaste"), func(p *Profile, v string) { p.Caste = v }},
	{keys("subcaste"), func(p *Profile, v string) { p.Subcaste = v }},
	{keys("mtongue", "mother_tongue"), func(p *Profile, v string) { p.MotherTongue = v }},
	{keys("mstatus"), func(p *Profile, v string) { p.MaritalStatus = v }},
	{keys("managedBy"), func(p *Profile, v string) { p.ManagedBy = v }},
	{keys("diet"), func(p *Profile, v string) { p.Diet = v }},
	{keys("profileTag"), func(p *Profile, v string) { p.ProfileTag = v }},
	{keys("userloginstatus"), func(p *Profile, v string) { p.LastOnline = v }},
	{keys("subscription_text"), func(p *Profile, v string) { p.SubscriptionType = v }},
}

var (
	ageFrom        = keys("age")
	matchScoreFrom = keys("matchScore")
	photosFrom     = keys("photos", "photo")
	albumFrom      = keys("album_count")
	verifiedFrom   = keys("verification_status")
	sealsFrom      = keys("verification_seal")
	onlineFrom     = keys("online")
	compatibleFrom = keys("mostCompatible")
	videoFrom      = []extractor{path("media", "video")}
)

// Map converts one upstream record into a canonical profile. It never fails:
// missing or malformed fields fall back to their absent value.
func Map(raw RawRecord) *Profile {
	p := &Profile{}

	for _, field := range textFields {
		if v, ok := resolve(raw, field.from); ok {
			field.set(p, coerceString(v))
		}
	}

	if p.Name == "" {
		p.Name = NameNotProvided
	}

	if v, ok := resolve(raw, ageFrom); ok {
		p.Age = ExtractNumber(coerceString(v))
	}

	if v, ok := resolve(raw, matchScoreFrom); ok {
		p.MatchScore = ExtractNumber(coerceString(v))
	}

	p.Photos = []string{}
	if v, ok := resolve(raw, photosFrom); ok {
		p.Photos = coerceURLs(v)
	}

	if v, ok := resolve(raw, albumFrom); ok {
		if n := coerceInt(v); n > 0 {
			p.AlbumCount = n
		}
	}

	p.VerificationSeals = []string{}
	if v, ok := resolve(raw, sealsFrom); ok {
		p.VerificationSeals = coerceStrings(v)
	}

	if v, ok := resolve(raw, verifiedFrom); ok {
		p.IsVerified = coerceInt(v) == 1 || v == true
	}

	if v, ok := resolve(raw, onlineFrom); ok {
		p.IsOnline = coerceBool(v)
	}

	if v, ok := resolve(raw, compatibleFrom); ok {
		p.MostCompatible = coerceBool(v)
	}

	if v, ok := resolve(raw, videoFrom); ok {
		p.HasVideo = !hasVideoError(v)
	}

	Derive(p)

	return p
}

// FromAny maps a decoded JSON value that is expected to be a profile object.
func FromAny(v any) (*Profile, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, apperr.NewTransform("profile record must be an object, got %T", v)
	}
	return Map(RawRecord(m)), nil
}

// ExtractNumber returns the first run of digits in s, or nil when there is none.
func ExtractNumber(s string) *int {
	match := digitsRe.FindString(s)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}

func hasVideoError(video any) bool {
	m, ok := asMap(video)
	if !ok {
		return false
	}
	be, ok := asMap(m["be"])
	if !ok {
		return false
	}
	return !isBlank(be["errorCode"])
}

func asMap(v any) (map[string]any, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case RawRecord:
		return typed, true
	default:
		return nil, false
	}
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes" || lower == "y" || lower == "1"
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return false
	}
}

func coerceInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func coerceStrings(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		if s := coerceString(v); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range items {
		if isBlank(item) {
			continue
		}
		out = append(out, coerceString(item))
	}
	return out
}

// coerceURLs accepts a single URL, a list of URLs or a list of photo objects.
func coerceURLs(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	for _, item := range items {
		if m, isMap := asMap(item); isMap {
			for _, k := range []string{"url", "src", "mainPicUrl"} {
				if s, isString := m[k].(string); isString && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
					break
				}
			}
			continue
		}
		if s, isString := item.(string); isString && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
