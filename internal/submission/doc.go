// Package submission runs cleaning submissions end to end: read the run file,
// load the spreadsheets, run the pipeline profile, and store the rendered
// artifacts.
//
// Each submission gets its own identifier and diagnostic log. RunAll executes
// many run files on a bounded worker pool; submissions never share state, so
// a failure in one does not affect the others.
package submission
