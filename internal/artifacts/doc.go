// Package artifacts renders a submission outcome into its output files and
// stores them through a Sink.
//
// A successful submission produces {base}_ETL.tsv, and when identifiers were
// resolved also {base}_MAP.tsv and one audit report ({base}_User_To_Ensembl.tsv
// or {base}_UNMAPPED.tsv). A cleaned phenotype table is written as
// {phenotype base}_ETL.tsv. Every submission, successful or not, gets
// {base}_log.yml.
//
// Two sinks exist: the local filesystem, written atomically, and an S3
// compatible bucket.
package artifacts
