// Package parsing normalizes raw job records from a search feed into typed postings.
package parsing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"
)

// RawRecord is one job record as delivered by the feed. Every key is optional.
type RawRecord map[string]any

// Keys of a raw record.
const (
	KeyTitle       = "job_title"
	KeyEmployer    = "employer_name"
	KeyCity        = "job_city"
	KeyState       = "job_state"
	KeyMinSalary   = "job_min_salary"
	KeyMaxSalary   = "job_max_salary"
	KeyIsRemote    = "job_is_remote"
	KeyDescription = "job_description"
	KeyApplyLink   = "job_apply_link"
	KeyPostedAt    = "job_posted_at"

	// keyPostedAtUTC is the field name the JSearch API actually uses.
	keyPostedAtUTC = "job_posted_at_datetime_utc"
)

// ExternalURL returns the record's apply link, the natural key used for deduplication.
func ExternalURL(raw RawRecord) string {
	return getString(raw, KeyApplyLink)
}

// getString returns the first non-blank string value among keys, trimmed and
// NFC-normalized. Non-string values count as absent.
func getString(raw RawRecord, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return norm.NFC.String(s)
			}
		}
	}
	return ""
}

// getInt returns a salary-like integer, truncating fractions. Anything that is
// not a finite number yields 0.
func getInt(raw RawRecord, key string) int64 {
	var f float64
	switch v := raw[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(math.Trunc(f))
}

// getBool returns a boolean flag; values that are not booleans default to false.
func getBool(raw RawRecord, key string) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false
		}
		return b
	default:
		return false
	}
}

// getDate parses a timestamp into a UTC calendar date. Strings go through
// dateparse; numbers are Unix seconds. Unparseable values yield nil.
func getDate(raw RawRecord, keys ...string) *time.Time {
	for _, key := range keys {
		var t time.Time
		switch v := raw[key].(type) {
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			parsed, err := dateparse.ParseIn(s, time.UTC)
			if err != nil {
				continue
			}
			t = parsed
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				continue
			}
			t = time.Unix(int64(v), 0)
		case int:
			if v <= 0 {
				continue
			}
			t = time.Unix(int64(v), 0)
		case int64:
			if v <= 0 {
				continue
			}
			t = time.Unix(v, 0)
		case json.Number:
			secs, err := v.Int64()
			if err != nil || secs <= 0 {
				continue
			}
			t = time.Unix(secs, 0)
		default:
			continue
		}

		t = t.UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &date
	}
	return nil
}
