// Package rail runs Result[T] values through concurrent stages ("lines").
//
// A rail is built from three parts:
// - Feed/FeedSeq: lazily put values on an input channel, tagged with their position
// - Try: lift a (Out, error) function into a stage that starts the work in its own
//   goroutine and hands back a channel that yields exactly one result
// - Run: drive a stage with a fixed number of locomotives; each locomotive takes
//   one input, starts the stage, waits for it, and only then takes the next input
// - Finally: turn every result, successful or not, into a plain value
//
// Cancellation is routed through CancellationHandlers so callers decide what
// happens to unprocessed, processed and remaining values when the context ends.
package rail
