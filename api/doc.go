// Package api exposes the scheduling engine over HTTP. The service is a
// thin layer over the strategy registry: it hydrates experiment documents,
// invokes a strategy, and returns the result together with derived metrics.
// Long runs report per-iteration progress through a run-event hub that
// streams Server-Sent Events to subscribers.
//
// The service owns no scheduling logic. Every request flows through the
// same builders, decoder and strategies the benchmark harness uses.
package api
