// Package domain contains the core business entities for GreenTracker.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the carbon footprint tracker.
package domain

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the wall-clock format persisted in usage entries.
// It matches the layout of entries written by earlier versions of the
// store, so old and new files stay interchangeable.
const TimestampLayout = "2006-01-02 15:04:05"

// UsageEntry is one recorded analysis outcome. Entries are immutable
// once appended; the history only grows.
type UsageEntry struct {
	// Timestamp is the wall-clock time the analysis completed,
	// formatted with TimestampLayout.
	Timestamp string `json:"timestamp"`

	// CarbonScore is the estimated emissions in kilograms of CO2-equivalent.
	CarbonScore float64 `json:"carbon_score"`

	// OffsetCost is the estimated offset cost in currency units.
	OffsetCost float64 `json:"offset_cost"`
}

// NewUsageEntry creates a UsageEntry stamped with the given time.
func NewUsageEntry(now time.Time, carbonScore, offsetCost float64) UsageEntry {
	return UsageEntry{
		Timestamp:   now.Format(TimestampLayout),
		CarbonScore: carbonScore,
		OffsetCost:  offsetCost,
	}
}

// Time parses the entry timestamp. The zero time is returned for
// entries written with an unrecognized layout.
func (e UsageEntry) Time() time.Time {
	t, _ := time.Parse(TimestampLayout, e.Timestamp)
	return t
}

// UserRecord is a registered user: a password credential plus the
// append-only history of analysis outcomes.
//
// Two shapes exist on disk. The legacy shape is a bare credential
// string, predating the history field. The full shape is an object with
// "password" and "carbon_history" fields. Decoding accepts both and
// normalizes to the full shape; encoding always writes the full shape.
type UserRecord struct {
	// Credential is the SHA-256 hex digest of the user's password.
	// The plaintext is never stored.
	Credential string

	// History is the ordered sequence of usage entries, oldest first.
	History []UsageEntry
}

// fullRecord is the on-disk full shape of a user record.
type fullRecord struct {
	Password      string       `json:"password"`
	CarbonHistory []UsageEntry `json:"carbon_history"`
}

// UnmarshalJSON decodes either record shape. A bare string is the
// legacy credential-only form; it is upgraded in place, preserving the
// credential and starting with no history.
func (r *UserRecord) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		r.Credential = legacy
		r.History = nil
		return nil
	}

	var full fullRecord
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	r.Credential = full.Password
	r.History = full.CarbonHistory
	return nil
}

// MarshalJSON always writes the full shape, with an empty (not null)
// history array so readers never see a missing field again.
func (r UserRecord) MarshalJSON() ([]byte, error) {
	history := r.History
	if history == nil {
		history = []UsageEntry{}
	}
	return json.Marshal(fullRecord{
		Password:      r.Credential,
		CarbonHistory: history,
	})
}

// Clone returns a deep copy of the record.
func (r UserRecord) Clone() UserRecord {
	out := UserRecord{Credential: r.Credential}
	if r.History != nil {
		out.History = make([]UsageEntry, len(r.History))
		copy(out.History, r.History)
	}
	return out
}
