// Package runfile reads the per-submission YAML run parameters: which
// pipeline to run, the input files, and the identifier-resolution context.
package runfile
