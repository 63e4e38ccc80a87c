// Package core contains the shared types for LeapPrep: the in-memory Dataset
// and Column model and the error taxonomy used by every pipeline stage.
//
// Datasets are values in the functional sense. Every operation returns a new
// Dataset and leaves its receiver untouched, so callers never observe aliasing
// between the input and output of a transform.
package core
