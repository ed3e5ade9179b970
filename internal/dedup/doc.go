// Package dedup normalizes row and column labels so a table satisfies the
// cleaned-table invariants: no missing labels and no duplicates.
//
// Every operation is a stable filter. Surviving labels keep their relative
// order and the first occurrence of a duplicate wins. An operation that removes
// nothing returns the input table unchanged and logs a zero-count INFO entry;
// one that would leave the table empty rejects instead.
package dedup
