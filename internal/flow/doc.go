// Package flow is the survey navigation engine.
//
// It evaluates branching rules against a respondent's answers, resolves the
// next question, gates transitions on required answers, lints a survey's rule
// graph at authoring time and builds the node/edge graph shown to authors.
//
// Every function here is pure over its arguments: no I/O, no shared state.
// Callers may use it from any number of goroutines, one session each.
package flow
