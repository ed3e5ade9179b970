package table

// Result is the outcome of a cleaning step: either a table or a rejection
// reason. The zero value is a rejection with no reason.
type Result struct {
	table  *Table
	reason string
}

// Accept wraps a surviving table.
func Accept(t *Table) Result { return Result{table: t} }

// Reject records why a step refused the table.
func Reject(reason string) Result { return Result{reason: reason} }

// Table returns the surviving table and true, or nil and false on rejection.
func (r Result) Table() (*Table, bool) { return r.table, r.table != nil }

// Rejected reports whether the step rejected the table.
func (r Result) Rejected() bool { return r.table == nil }

// Reason returns the rejection reason, empty for accepted results.
func (r Result) Reason() string { return r.reason }

// Then runs next on the surviving table, short-circuiting on rejection.
func (r Result) Then(next func(*Table) Result) Result {
	if r.Rejected() {
		return r
	}
	return next(r.table)
}
