// Package conflict classifies an incoming document write against stored
// state. Classification is pure and idempotent; it never attempts a merge.
package conflict

import (
	"github.com/specboard/syncd/internal/model"
	"github.com/specboard/syncd/internal/textdiff"
)

// Outcome of classifying one write.
type Outcome int

const (
	// Clean means the write may be applied as version stored.Version+1.
	Clean Outcome = iota
	// NoOp means the content is already stored (idempotent duplicate push).
	NoOp
	// Conflict means the writer did not see the latest state and content diverged.
	Conflict
)

func (o Outcome) String() string {
	switch o {
	case Clean:
		return "clean"
	case NoOp:
		return "noop"
	case Conflict:
		return "conflict"
	}
	return "unknown"
}

// Incoming is the writer's view: the version it based its edit on and the
// proposed content.
type Incoming struct {
	BaseVersion int64
	Content     string
}

// Classify decides whether in is a clean update, a no-op, or a conflict
// against stored. A nil stored means first write. A base version ahead of
// the stored version cannot occur under correct protocol use and is treated
// as a conflict rather than trusting the client.
func Classify(in Incoming, stored *model.SyncedDocument) Outcome {
	if stored == nil {
		return Clean
	}
	same := textdiff.Fingerprint(in.Content) == stored.Checksum
	if in.BaseVersion == stored.Version {
		if same {
			return NoOp
		}
		return Clean
	}
	if same {
		return NoOp
	}
	return Conflict
}
