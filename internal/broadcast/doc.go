// Package broadcast keeps the in-memory log of reply decisions and fans
// them out to live subscribers.
//
// EventLog is a single-goroutine actor: emits, subscriptions, and reads all
// go through its command channel, so no locks are needed and slow
// subscribers cannot block the send pipeline.
package broadcast
