// Package audit records risk-engine decisions as immutable entries for
// later review. Every rejection and every manual override leaves a trail;
// overrides are only honored when their entry is durably recorded.
package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wyckoffd/risk-engine/pkg/wyckoff"
)

// EntryKind classifies an audit entry
type EntryKind string

const (
	// KindValidation records an admitted trade
	KindValidation EntryKind = "validation"
	// KindRejection records a policy rejection with its failing stage
	KindRejection EntryKind = "rejection"
	// KindOverride records a manual bypass of a strict correlation rejection
	KindOverride EntryKind = "override"
)

// Entry is one immutable audit record. RecordedAt is supplied by the caller
// so identical runs write identical trails.
type Entry struct {
	ID            string              `json:"id"`
	Kind          EntryKind           `json:"kind"`
	SignalID      string              `json:"signal_id,omitempty"`
	Symbol        string              `json:"symbol"`
	Pattern       wyckoff.PatternType `json:"pattern,omitempty"`
	Stage         string              `json:"stage,omitempty"`
	Reason        string              `json:"reason,omitempty"`
	Approver      string              `json:"approver,omitempty"`
	Justification string              `json:"justification,omitempty"`
	RecordedAt    time.Time           `json:"recorded_at"`
}

// Validate checks the entry carries the fields its kind requires
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("audit entry id is required")
	}
	switch e.Kind {
	case KindValidation, KindRejection:
	case KindOverride:
		if e.Approver == "" {
			return fmt.Errorf("override entry %s: approver is required", e.ID)
		}
		if e.Justification == "" {
			return fmt.Errorf("override entry %s: justification is required", e.ID)
		}
	default:
		return fmt.Errorf("audit entry %s: unknown kind %q", e.ID, e.Kind)
	}
	if e.Symbol == "" {
		return fmt.Errorf("audit entry %s: symbol is required", e.ID)
	}
	return nil
}

// Recorder persists audit entries. Implementations must be safe for
// concurrent use; a Record that returns nil means the entry is durable.
type Recorder interface {
	Record(entry Entry) error
}

// NewEntryID returns a unique id for a new audit entry
func NewEntryID() string {
	return uuid.NewString()
}
