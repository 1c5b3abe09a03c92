// Package redis implements the Redis-backed conversation store.
//
// Conversation state (state machine phase, generation counter, buffered
// messages) lives in Redis hashes and lists, mutated only through Lua
// scripts so that concurrent webhook deliveries and timer fires observe
// atomic transitions. Timer handles stay process-local; cross-process
// staleness is handled by the generation fence, not by cancellation.
package redis
