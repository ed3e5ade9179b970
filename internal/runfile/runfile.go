package runfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"kncleanup/internal/artifacts"
	"kncleanup/internal/pipeline"
	"kncleanup/internal/services"
	"kncleanup/internal/validation"
)

// Audit report kinds.
const (
	AuditUserToEnsembl = artifacts.AuditUserToEnsembl
	AuditUnmapped      = artifacts.AuditUnmapped
)

// RedisCredential overrides the configured Redis lookup for one submission.
type RedisCredential struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"omitempty,gt=0,lte=65535"`
	Password string `yaml:"password"`
}

// Address returns host:port, defaulting the port to 6379.
func (c RedisCredential) Address() string {
	port := c.Port
	if port == 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

// File is one submission's run parameters.
type File struct {
	PipelineType     string           `yaml:"pipeline_type" validate:"required,pipeline"`
	Spreadsheet      string           `yaml:"spreadsheet_name_full_path"`
	Phenotype        string           `yaml:"phenotype_name_full_path"`
	PastedGeneList   string           `yaml:"pasted_gene_list_full_path"`
	UniverseGeneList string           `yaml:"universal_gene_list_full_path"`
	Threshold        int              `yaml:"threshold" validate:"omitempty,gte=1"`
	ResultsDirectory string           `yaml:"results_directory"`
	SourceHint       string           `yaml:"source_hint"`
	TaxonID          string           `yaml:"taxonid"`
	Correlation      string           `yaml:"correlation_measure" validate:"omitempty,oneof=t_test pearson"`
	Impute           string           `yaml:"impute"`
	AuditReport      string           `yaml:"audit_report" validate:"omitempty,oneof=user_to_ensembl unmapped"`
	RedisCredential  *RedisCredential `yaml:"redis_credential"`

	// Path is the file the parameters were read from.
	Path string `yaml:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("pipeline", func(fl validator.FieldLevel) bool {
		_, err := pipeline.LookupProfile(fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and validates the run file at path. Relative input paths are
// resolved against the run file's directory.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "runfile", "load", path, err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "runfile", "load", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runfile", "parse", path, err)
	}
	f.Path = path
	dir := filepath.Dir(path)
	f.Spreadsheet = resolvePath(dir, f.Spreadsheet)
	f.Phenotype = resolvePath(dir, f.Phenotype)
	f.PastedGeneList = resolvePath(dir, f.PastedGeneList)
	f.UniverseGeneList = resolvePath(dir, f.UniverseGeneList)
	f.ResultsDirectory = resolvePath(dir, f.ResultsDirectory)
	return f, nil
}

// Parse decodes and validates run parameters.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("decode run file: %w", err)
	}
	f.normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) normalize() {
	f.PipelineType = strings.ToLower(strings.TrimSpace(f.PipelineType))
	f.Spreadsheet = strings.TrimSpace(f.Spreadsheet)
	f.Phenotype = strings.TrimSpace(f.Phenotype)
	f.PastedGeneList = strings.TrimSpace(f.PastedGeneList)
	f.UniverseGeneList = strings.TrimSpace(f.UniverseGeneList)
	f.ResultsDirectory = strings.TrimSpace(f.ResultsDirectory)
	f.SourceHint = strings.TrimSpace(f.SourceHint)
	f.TaxonID = strings.TrimSpace(f.TaxonID)
	f.Correlation = strings.ToLower(strings.TrimSpace(f.Correlation))
	f.Impute = strings.TrimSpace(f.Impute)
	f.AuditReport = strings.ToLower(strings.TrimSpace(f.AuditReport))
}

// Validate checks field-level constraints and the inputs the pipeline type
// needs, and returns a single error listing every violation.
func (f *File) Validate() error {
	var messages []string
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate run file: %w", err)
		}
		for _, fe := range verrs {
			messages = append(messages, formatFieldError(fe))
		}
	}
	if profile, err := f.Profile(); err == nil {
		messages = append(messages, f.missingInputs(profile.Options.Mode)...)
	}
	if len(messages) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "runfile", "validate", strings.Join(messages, "; "), nil)
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "pipeline":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(pipeline.ProfileNames(), ", "))
	case "gt", "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func (f *File) missingInputs(mode pipeline.Mode) []string {
	var required map[string]string
	switch mode {
	case pipeline.ModeGeneSetConversion:
		required = map[string]string{
			"pasted_gene_list_full_path":    f.PastedGeneList,
			"universal_gene_list_full_path": f.UniverseGeneList,
		}
	case pipeline.ModePhenotypeExpand:
		required = map[string]string{"phenotype_name_full_path": f.Phenotype}
		if f.Threshold == 0 {
			required["threshold"] = ""
		}
	default:
		required = map[string]string{"spreadsheet_name_full_path": f.Spreadsheet}
	}
	var missing []string
	for field, value := range required {
		if value == "" {
			missing = append(missing, fmt.Sprintf("%s is required", field))
		}
	}
	sort.Strings(missing)
	return missing
}

// PrimaryInput is the input file that names the submission's artifacts.
func (f *File) PrimaryInput() string {
	profile, err := f.Profile()
	if err != nil {
		return f.Spreadsheet
	}
	switch profile.Options.Mode {
	case pipeline.ModeGeneSetConversion:
		return f.PastedGeneList
	case pipeline.ModePhenotypeExpand:
		return f.Phenotype
	default:
		return f.Spreadsheet
	}
}

// Profile returns the pipeline profile named by the run file.
func (f *File) Profile() (pipeline.Profile, error) {
	return pipeline.LookupProfile(f.PipelineType)
}

// CorrelationMeasure parses the correlation measure, which is empty when the
// run file omits it.
func (f *File) CorrelationMeasure() (validation.CorrelationMeasure, error) {
	if f.Correlation == "" {
		return "", nil
	}
	return validation.ParseCorrelationMeasure(f.Correlation)
}

// AuditKind returns the audit report kind, defaulting to user_to_ensembl.
func (f *File) AuditKind() string {
	if f.AuditReport == "" {
		return AuditUserToEnsembl
	}
	return f.AuditReport
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Join(dir, path)
}
