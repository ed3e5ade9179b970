package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"kncleanup/internal/resolver"
	"kncleanup/internal/services"
	"kncleanup/internal/table"
	"kncleanup/internal/validation"
)

// Column names of the gene set conversion outputs.
const (
	ColumnOriginalGeneName = "original_gene_name"
	ColumnUploadedGeneSet  = "uploaded_gene_set"
	// IndexSampleID heads the row labels of an expanded phenotype table.
	IndexSampleID = "sample_id"
)

// convertGeneSet resolves the row labels of req.Table and marks the mapped
// genes in req.Universe. Unmapped genes are dropped without an audit report.
func (p *Pipeline) convertGeneSet(ctx context.Context, logger *slog.Logger, req Request, out *Outcome) (*Outcome, error) {
	log := out.Log
	if len(req.Universe) == 0 {
		return p.abort(logger, out, services.Wrap(services.ErrConfiguration, "pipeline", "gene_set",
			"no universal gene list supplied", nil))
	}

	var genes []string
	for _, label := range req.Table.RowLabels() {
		if !table.IsMissingRowLabel(label) {
			genes = append(genes, label)
		}
	}
	if len(genes) == 0 {
		log.Errorf("Input data is empty. Please upload valid input data.")
		return p.reject(logger, out, table.Reject("empty gene list"))
	}

	records, err := p.resolver.Resolve(services.WithStage(ctx, "resolve"), genes, resolver.NodeGene, req.Hint, req.Taxon)
	if err != nil {
		return p.abort(logger, out, fmt.Errorf("resolve identifiers: %w", err))
	}
	if len(records) != len(genes) {
		return p.abort(logger, out, fmt.Errorf("resolve identifiers: %d records for %d genes", len(records), len(genes)))
	}

	var ids []string
	var originals [][]table.Cell
	mapped := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if !rec.ID.IsMapped() {
			continue
		}
		ids = append(ids, rec.ID.ID())
		originals = append(originals, []table.Cell{table.String(genes[i])})
		mapped[rec.ID.ID()] = struct{}{}
	}
	geneMap, err := table.New(ids, []string{ColumnOriginalGeneName}, originals)
	if err != nil {
		return p.abort(logger, out, fmt.Errorf("gene set map: %w", err))
	}

	common := 0
	membership := make([][]table.Cell, len(req.Universe))
	for i, id := range req.Universe {
		v := int64(0)
		if _, ok := mapped[id]; ok {
			v = 1
			common++
		}
		membership[i] = []table.Cell{table.Int(v)}
	}
	universe, err := table.New(req.Universe, []string{ColumnUploadedGeneSet}, membership)
	if err != nil {
		return p.abort(logger, out, fmt.Errorf("gene set membership: %w", err))
	}

	log.Infof("Found %d common gene(s) that shared between pasted gene list and universal gene list.", common)
	log.Infof("Universal gene list contains %d genes.", len(req.Universe))
	log.Infof("Mapped gene list contains %d genes.", len(ids))

	out.Table = universe
	out.Map = geneMap
	return p.succeed(logger, out)
}

func (p *Pipeline) expandPhenotype(logger *slog.Logger, req Request, out *Outcome) (*Outcome, error) {
	if req.Threshold < 1 {
		return p.abort(logger, out, services.Wrap(services.ErrConfiguration, "pipeline", "phenotype",
			"phenotype expansion requires a positive threshold", nil))
	}
	res := validation.ExpandPhenotype(req.Table, req.Threshold, out.Log)
	if res.Rejected() {
		return p.reject(logger, out, res)
	}
	out.Table, _ = res.Table()
	out.IndexName = IndexSampleID
	return p.succeed(logger, out)
}
