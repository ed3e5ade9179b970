// Package table holds the labeled 2-D dataset every cleaning stage works on.
//
// A Table pairs a row-label sequence (gene or sample identifiers) with a
// column-label sequence and a rectangular matrix of Cells. Cells carry an
// explicit kind so NA, numeric, boolean and text values stay distinguishable
// after loading. Cleaning steps return a Result instead of a nil table, so a
// rejection cannot be mistaken for an empty dataset.
package table
