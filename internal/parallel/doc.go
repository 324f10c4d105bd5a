// Package parallel runs the row loops of the resampling passes on a fixed
// set of goroutines.
//
// A nil *WorkerPool is valid and runs everything on the calling goroutine,
// so callers that want strictly sequential execution simply pass nil.
package parallel
