// Package poller drives the review-status watch loop.
//
// One iteration is fetch -> validate -> translate -> dedup -> notify ->
// advance cursor, followed by an unconditional sleep until the next trigger.
// Every failure inside an iteration is absorbed at the iteration boundary
// and reported through the same deduplicated notification path as ordinary
// status changes; only the signal context or an empty homework batch ends
// the loop.
package poller
