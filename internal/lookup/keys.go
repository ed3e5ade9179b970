package lookup

import "strings"

// Delimiter joins the parts of every composite key.
const Delimiter = "::"

// MultiMatch is the stored value marking a name with several candidates.
const MultiMatch = "unmapped-many"

// UnmappedPrefix starts every stored value that is not a stable ID.
const UnmappedPrefix = "unmapped"

// Metadata fields stored under stable::{id}::{field}.
const (
	FieldType  = "type"
	FieldAlias = "alias"
	FieldDesc  = "desc"
)

// StableKey addresses node metadata: stable::{id}::{field}.
func StableKey(id, field string) string {
	return join("stable", id, field)
}

// TripletKey addresses a (taxon, hint) scoped name: triplet::{taxon}::{key}::{hint}.
func TripletKey(taxon, key, hint string) string {
	return join("triplet", taxon, key, hint)
}

// TaxonKey addresses a species scoped name: taxon::{taxon}::{key}.
func TaxonKey(taxon, key string) string {
	return join("taxon", taxon, key)
}

// HintKey addresses a source-database scoped name: hint::{key}::{hint}.
func HintKey(key, hint string) string {
	return join("hint", key, hint)
}

// UniqueKey addresses the global unique-name table: unique::{key}.
func UniqueKey(key string) string {
	return join("unique", key)
}

func join(parts ...string) string {
	return strings.Join(parts, Delimiter)
}
