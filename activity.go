package main

import (
	"math"
	"strings"
	"time"
)

// ActivitySource tags which directory a merged last-activity value came from.
type ActivitySource int

const (
	ActivityNone ActivitySource = iota
	ActivityCloud
	ActivityOnPrem
)

func (s ActivitySource) String() string {
	switch s {
	case ActivityCloud:
		return "Cloud"
	case ActivityOnPrem:
		return "OnPrem"
	default:
		return "None"
	}
}

// LastActivity is the reconciled sign-in activity of one identity.
type LastActivity struct {
	Source ActivitySource
	// When is nil exactly when Source is ActivityNone.
	When *time.Time
	// AgeDays is the recency at resolution time: one decimal place for the
	// cloud source, whole days for the on-prem source. Meaningless when
	// Source is ActivityNone.
	AgeDays float64
}

// timestampLayouts are the string forms a timestamp may arrive in from the
// snapshot store or a pre-generated report file.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerceTimestamp normalizes whatever the cloud source delivered into an
// optional timestamp. Placeholders ("-", "N/A", empty), unparseable strings
// and non-timestamp values all behave exactly like absent; nothing here ever
// errors.
func coerceTimestamp(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		u := t.UTC()
		return &u
	case time.Time:
		if t.IsZero() {
			return nil
		}
		u := t.UTC()
		return &u
	case string:
		s := strings.TrimSpace(t)
		switch strings.ToLower(s) {
		case "", "-", "n/a", "na", "null", "never":
			return nil
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				u := parsed.UTC()
				return &u
			}
		}
		return nil
	default:
		return nil
	}
}

// ResolveLastActivity merges the cloud sign-in timestamp and the on-prem
// last-logon timestamp into one value. The cloud source always wins when
// present, regardless of which timestamp is more recent; on-prem is a
// fallback only.
func ResolveLastActivity(cloud any, onPrem *time.Time, now time.Time) LastActivity {
	if t := coerceTimestamp(cloud); t != nil {
		return LastActivity{Source: ActivityCloud, When: t, AgeDays: ageInDays(now, *t, 1)}
	}
	if t := coerceTimestamp(onPrem); t != nil {
		return LastActivity{Source: ActivityOnPrem, When: t, AgeDays: ageInDays(now, *t, 0)}
	}
	return LastActivity{Source: ActivityNone}
}

// ageInDays computes now minus then in days, rounded to the given number of
// decimal places (0 or 1).
func ageInDays(now, then time.Time, decimals int) float64 {
	days := now.Sub(then).Hours() / 24
	if decimals == 0 {
		return math.Round(days)
	}
	return math.Round(days*10) / 10
}
