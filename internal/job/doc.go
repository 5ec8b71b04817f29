// Package job runs fire-and-forget background work. Producers enqueue Jobs
// onto a bounded in-memory Queue without blocking; a WorkerPool drains the
// queue on a fixed number of goroutines. Failures are reported to an optional
// error handler and logged, never returned to the producer.
package job
