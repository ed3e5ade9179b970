// Package validation holds the value-level checks applied after label cleanup.
//
// Validate runs a fixed sequence of toggleable predicates (drop NA columns,
// reject NA, real numeric, non-negative) and stops at the first rejection, each
// rejection leaving a single ERROR entry in the submission log.
// ValidateCategorical checks a table against an exact value domain. Impute and
// the phenotype helpers cover the per-pipeline extras.
package validation
