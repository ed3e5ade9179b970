package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"kncleanup/internal/services"
	"kncleanup/internal/validation"
)

// PhenotypeMode selects how an accompanying phenotype table is cleaned.
type PhenotypeMode string

const (
	// PhenotypeIgnore skips phenotype handling.
	PhenotypeIgnore PhenotypeMode = ""
	// PhenotypePreprocess dedups an optional phenotype table and requires its
	// samples to intersect the spreadsheet columns.
	PhenotypePreprocess PhenotypeMode = "preprocess"
	// PhenotypeCheckTrim validates the phenotype for the correlation measure,
	// then trims it to the spreadsheet samples.
	PhenotypeCheckTrim PhenotypeMode = "check_trim"
	// PhenotypeTrim trims a required phenotype to the spreadsheet samples.
	PhenotypeTrim PhenotypeMode = "trim"
)

// RequiresPhenotype reports whether the mode fails without a phenotype table.
func (m PhenotypeMode) RequiresPhenotype() bool {
	return m == PhenotypeCheckTrim || m == PhenotypeTrim
}

// Mode selects what a profile does with its input.
type Mode string

const (
	// ModeClean runs the spreadsheet cleaning sequence.
	ModeClean Mode = ""
	// ModeGeneSetConversion maps a pasted gene list to canonical IDs and
	// marks its members in the universal gene list.
	ModeGeneSetConversion Mode = "gene_set_conversion"
	// ModePhenotypeExpand one-hot encodes the categorical columns of a
	// phenotype table.
	ModePhenotypeExpand Mode = "phenotype_expand"
)

// Options is the per-profile step configuration.
type Options struct {
	Mode                      Mode
	Validation                validation.Options
	ResolveIdentifiers        bool
	RemoveMissingColumnLabels bool
	Phenotype                 PhenotypeMode
}

// Profile names a pipeline and the options it runs with.
type Profile struct {
	Name    string
	Options Options
}

const (
	GenesetCharacterization = "geneset_characterization_pipeline"
	SamplesClustering       = "samples_clustering_pipeline"
	GenePrioritization      = "gene_prioritization_pipeline"
	FeaturePrioritization   = "feature_prioritization_pipeline"
	PhenotypePrediction     = "phenotype_prediction_pipeline"
	GeneralClustering       = "general_clustering_pipeline"
	PastedGeneSetConversion = "pasted_gene_set_conversion_pipeline"
	PhenotypeExpander       = "phenotype_expander_pipeline"
)

var (
	strictNonNegative = validation.Options{RejectIfAnyNA: true, RequireRealNumeric: true, RequireNonNegative: true}
	strictReal        = validation.Options{RejectIfAnyNA: true, RequireRealNumeric: true}
	dropNAReal        = validation.Options{DropNAColumns: true, RequireRealNumeric: true}
)

var profiles = map[string]Options{
	GenesetCharacterization: {Validation: strictNonNegative, ResolveIdentifiers: true},
	SamplesClustering:       {Validation: strictNonNegative, ResolveIdentifiers: true, Phenotype: PhenotypePreprocess},
	GenePrioritization:      {Validation: dropNAReal, ResolveIdentifiers: true, Phenotype: PhenotypeCheckTrim},
	FeaturePrioritization:   {Validation: dropNAReal, Phenotype: PhenotypeCheckTrim},
	PhenotypePrediction:     {Validation: dropNAReal, Phenotype: PhenotypeTrim},
	GeneralClustering:       {Validation: strictReal, RemoveMissingColumnLabels: true},
	PastedGeneSetConversion: {Mode: ModeGeneSetConversion, ResolveIdentifiers: true},
	PhenotypeExpander:       {Mode: ModePhenotypeExpand},
}

// LookupProfile returns the named profile. The "_pipeline" suffix is optional.
func LookupProfile(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasSuffix(key, "_pipeline") {
		key += "_pipeline"
	}
	opts, ok := profiles[key]
	if !ok {
		return Profile{}, services.Wrap(services.ErrConfiguration, "pipeline", "profile",
			fmt.Sprintf("unknown pipeline %q (known: %s)", name, strings.Join(ProfileNames(), ", ")), nil)
	}
	return Profile{Name: key, Options: opts}, nil
}

// ProfileNames lists the known profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
