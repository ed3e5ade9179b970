package resolver

import (
	"fmt"
	"strings"

	"kncleanup/internal/lookup"
)

// NodeType classifies a knowledge network node.
type NodeType string

const (
	// NodeAuto asks Resolve to probe the store for the type.
	NodeAuto     NodeType = ""
	NodeGene     NodeType = "Gene"
	NodeProperty NodeType = "Property"
	// NodeNone is reported for unmapped keys.
	NodeNone NodeType = "None"
)

// ParseNodeType accepts gene, property, or an empty string for auto-detection.
func ParseNodeType(raw string) (NodeType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return NodeAuto, nil
	case "gene":
		return NodeGene, nil
	case "property":
		return NodeProperty, nil
	default:
		return NodeAuto, fmt.Errorf("unknown node type %q (want gene or property)", raw)
	}
}

// Sentinel strings written wherever an unmapped outcome is serialized.
const (
	SentinelNone = "unmapped-none"
	SentinelMany = lookup.MultiMatch
)

// Outcome tags a CanonicalID.
type Outcome int

const (
	OutcomeUnmappedNone Outcome = iota
	OutcomeUnmappedMany
	OutcomeResolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "mapped"
	case OutcomeUnmappedNone:
		return SentinelNone
	case OutcomeUnmappedMany:
		return SentinelMany
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CanonicalID is either a resolved stable identifier or one of the two
// unmapped outcomes. The zero value is UnmappedNone.
type CanonicalID struct {
	id      string
	outcome Outcome
}

// Resolved wraps a stable ID. An empty id yields UnmappedNone.
func Resolved(id string) CanonicalID {
	if id == "" {
		return UnmappedNone()
	}
	return CanonicalID{id: id, outcome: OutcomeResolved}
}

func UnmappedNone() CanonicalID { return CanonicalID{outcome: OutcomeUnmappedNone} }

func UnmappedMany() CanonicalID { return CanonicalID{outcome: OutcomeUnmappedMany} }

// ID returns the stable identifier, empty for unmapped outcomes.
func (c CanonicalID) ID() string {
	if c.outcome != OutcomeResolved {
		return ""
	}
	return c.id
}

func (c CanonicalID) Outcome() Outcome { return c.outcome }

func (c CanonicalID) IsMapped() bool { return c.outcome == OutcomeResolved }

// String renders the identifier or its sentinel.
func (c CanonicalID) String() string {
	switch c.outcome {
	case OutcomeResolved:
		return c.id
	case OutcomeUnmappedMany:
		return SentinelMany
	default:
		return SentinelNone
	}
}

// Record is the resolution of one input key.
type Record struct {
	// Key is the caller's original, un-normalized identifier.
	Key         string
	ID          CanonicalID
	Type        NodeType
	Alias       string
	Description string
}

// ConflictingNodeTypeError reports a batch whose probed types mix genes and
// properties.
type ConflictingNodeTypeError struct {
	GeneKeys     []string
	PropertyKeys []string
}

func (e *ConflictingNodeTypeError) Error() string {
	return fmt.Sprintf("conflicting node types in batch: %d gene key(s) (%s) and %d property key(s) (%s)",
		len(e.GeneKeys), preview(e.GeneKeys), len(e.PropertyKeys), preview(e.PropertyKeys))
}

func preview(keys []string) string {
	const limit = 3
	if len(keys) <= limit {
		return strings.Join(keys, ", ")
	}
	return strings.Join(keys[:limit], ", ") + ", ..."
}
