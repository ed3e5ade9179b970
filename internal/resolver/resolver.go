package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kncleanup/internal/logging"
	"kncleanup/internal/lookup"
	"kncleanup/internal/metrics"
	"kncleanup/internal/services"
)

// Layer names, also used as metric labels.
const (
	LayerType     = "type"
	LayerTriplet  = "triplet"
	LayerTaxon    = "taxon"
	LayerHint     = "hint"
	LayerUnique   = "unique"
	LayerMetadata = "metadata"
)

// Resolver maps user identifiers onto stable knowledge network IDs. It is
// safe for concurrent use when the underlying store is.
type Resolver struct {
	store   lookup.Store
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Resolver) { r.metrics = rec }
}

// New builds a resolver reading from store.
func New(store lookup.Store, opts ...Option) *Resolver {
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	return r
}

// Resolve returns one Record per key, in key order. Duplicate keys are
// resolved once and reported once per occurrence. nodeType NodeAuto probes the
// store; a batch mixing genes and properties fails with
// *ConflictingNodeTypeError. Store failures surface as lookup.ErrUnavailable.
func (r *Resolver) Resolve(ctx context.Context, keys []string, nodeType NodeType, hint, taxon string) ([]Record, error) {
	ctx = services.WithStage(ctx, "resolve")
	logger := logging.WithContext(ctx, r.logger)

	normalized := make([]string, len(keys))
	distinct := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for i, key := range keys {
		n := NormalizeKey(key)
		normalized[i] = n
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		distinct = append(distinct, n)
	}

	if nodeType == NodeAuto {
		inferred, err := r.probeType(ctx, distinct)
		if err != nil {
			return nil, err
		}
		nodeType = inferred
	}

	var ids map[string]CanonicalID
	switch nodeType {
	case NodeGene:
		var err error
		ids, err = r.resolveGenes(ctx, logger, distinct, NormalizeHint(hint), NormalizeTaxon(taxon))
		if err != nil {
			return nil, err
		}
	case NodeProperty:
		ids = make(map[string]CanonicalID, len(distinct))
		for _, key := range distinct {
			ids[key] = Resolved(key)
		}
	default:
		return nil, services.Wrap(services.ErrConfiguration, "resolve", "node type", fmt.Sprintf("unsupported node type %q", nodeType), nil)
	}

	meta, err := r.fetchMetadata(ctx, ids, nodeType)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(keys))
	counts := map[Outcome]int{}
	for i, key := range keys {
		// Blank keys never reach a layer and read as the zero UnmappedNone.
		id := ids[normalized[i]]
		rec := Record{Key: key, ID: id}
		if id.IsMapped() {
			m := meta[id.ID()]
			rec.Type, rec.Alias, rec.Description = m.nodeType, m.alias, m.desc
		} else {
			rec.Type = NodeNone
			rec.Alias = id.String()
			rec.Description = id.String()
		}
		records[i] = rec
		counts[id.Outcome()]++
	}

	r.metrics.Identifiers(metrics.OutcomeMapped, counts[OutcomeResolved])
	r.metrics.Identifiers(metrics.OutcomeUnmappedNone, counts[OutcomeUnmappedNone])
	r.metrics.Identifiers(metrics.OutcomeUnmappedMany, counts[OutcomeUnmappedMany])
	logger.Debug("identifiers resolved",
		logging.Int("keys", len(keys)),
		logging.Int("distinct", len(distinct)),
		logging.Int("mapped", counts[OutcomeResolved]),
		logging.Int("unmapped_none", counts[OutcomeUnmappedNone]),
		logging.Int("unmapped_many", counts[OutcomeUnmappedMany]),
	)
	return records, nil
}

func (r *Resolver) probeType(ctx context.Context, keys []string) (NodeType, error) {
	if len(keys) == 0 {
		return NodeGene, nil
	}
	probe := make([]string, len(keys))
	for i, key := range keys {
		probe[i] = lookup.StableKey(key, lookup.FieldType)
	}
	values, err := r.get(ctx, LayerType, probe)
	if err != nil {
		return NodeAuto, err
	}
	var genes, properties []string
	for i, v := range values {
		if !v.Found {
			continue
		}
		switch NodeType(v.Data) {
		case NodeGene:
			genes = append(genes, keys[i])
		case NodeProperty:
			properties = append(properties, keys[i])
		}
	}
	switch {
	case len(genes) > 0 && len(properties) > 0:
		return NodeAuto, &ConflictingNodeTypeError{GeneKeys: genes, PropertyKeys: properties}
	case len(properties) > 0:
		return NodeProperty, nil
	default:
		return NodeGene, nil
	}
}

type layer struct {
	name string
	key  func(string) string
}

// resolveGenes runs the precedence layers. Each layer issues one batched get
// for the keys still pending. A multi-match value marks the key ambiguous and
// leaves it pending; keys still pending at the end resolve to UnmappedMany if
// marked, otherwise UnmappedNone.
func (r *Resolver) resolveGenes(ctx context.Context, logger *slog.Logger, keys []string, hint, taxon string) (map[string]CanonicalID, error) {
	var layers []layer
	if hint != "" && taxon != "" {
		layers = append(layers, layer{LayerTriplet, func(k string) string { return lookup.TripletKey(taxon, k, hint) }})
	}
	if taxon != "" {
		layers = append(layers, layer{LayerTaxon, func(k string) string { return lookup.TaxonKey(taxon, k) }})
	}
	if hint != "" {
		layers = append(layers, layer{LayerHint, func(k string) string { return lookup.HintKey(k, hint) }})
	}
	layers = append(layers, layer{LayerUnique, lookup.UniqueKey})

	out := make(map[string]CanonicalID, len(keys))
	ambiguous := make(map[string]bool)
	pending := keys
	for _, l := range layers {
		if len(pending) == 0 {
			break
		}
		lookupKeys := make([]string, len(pending))
		for i, key := range pending {
			lookupKeys[i] = l.key(key)
		}
		values, err := r.get(ctx, l.name, lookupKeys)
		if err != nil {
			return nil, err
		}

		next := make([]string, 0, len(pending))
		for i, key := range pending {
			v := values[i]
			switch {
			case !v.Found || v.Data == "":
				next = append(next, key)
			case v.Data == lookup.MultiMatch:
				if l.name != LayerTriplet {
					ambiguous[key] = true
				}
				next = append(next, key)
			case strings.HasPrefix(v.Data, lookup.UnmappedPrefix):
				next = append(next, key)
			default:
				out[key] = Resolved(v.Data)
			}
		}
		logger.Debug("lookup layer finished",
			logging.String("layer", l.name),
			logging.Int("queried", len(pending)),
			logging.Int("resolved", len(pending)-len(next)),
		)
		pending = next
	}

	for _, key := range pending {
		if ambiguous[key] {
			out[key] = UnmappedMany()
		} else {
			out[key] = UnmappedNone()
		}
	}
	return out, nil
}

type nodeMeta struct {
	nodeType NodeType
	alias    string
	desc     string
}

// fetchMetadata reads type, alias and description for every mapped ID in one
// batched call. Missing alias or description fall back to the ID itself.
func (r *Resolver) fetchMetadata(ctx context.Context, ids map[string]CanonicalID, fallback NodeType) (map[string]nodeMeta, error) {
	stable := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !id.IsMapped() {
			continue
		}
		if _, ok := seen[id.ID()]; ok {
			continue
		}
		seen[id.ID()] = struct{}{}
		stable = append(stable, id.ID())
	}
	meta := make(map[string]nodeMeta, len(stable))
	if len(stable) == 0 {
		return meta, nil
	}

	fields := []string{lookup.FieldType, lookup.FieldAlias, lookup.FieldDesc}
	keys := make([]string, 0, len(stable)*len(fields))
	for _, id := range stable {
		for _, field := range fields {
			keys = append(keys, lookup.StableKey(id, field))
		}
	}
	values, err := r.get(ctx, LayerMetadata, keys)
	if err != nil {
		return nil, err
	}
	for i, id := range stable {
		typ, alias, desc := values[3*i], values[3*i+1], values[3*i+2]
		m := nodeMeta{nodeType: fallback, alias: id, desc: id}
		if typ.Found && typ.Data != "" {
			m.nodeType = NodeType(typ.Data)
		}
		if alias.Found && alias.Data != "" {
			m.alias = alias.Data
		}
		if desc.Found && desc.Data != "" {
			m.desc = desc.Data
		}
		meta[id] = m
	}
	return meta, nil
}

// get performs one batched read and enforces the store contract.
func (r *Resolver) get(ctx context.Context, layer string, keys []string) ([]lookup.Value, error) {
	r.metrics.LookupBatch(layer)
	values, err := r.store.Get(ctx, keys)
	if err != nil {
		if !errors.Is(err, lookup.ErrUnavailable) {
			err = lookup.Unavailable("resolver", layer, err)
		}
		return nil, err
	}
	if len(values) != len(keys) {
		return nil, lookup.Unavailable("resolver", layer, fmt.Errorf("store returned %d values for %d keys", len(values), len(keys)))
	}
	return values, nil
}
