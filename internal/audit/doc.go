// Package audit writes the action log that accompanies every successful
// task mutation.
//
// Writes are best-effort: a failed write is logged and never reverses the
// mutation it describes. StoreSink writes synchronously; AsyncSink hands
// entries to a bounded queue drained by a small worker pool.
package audit
