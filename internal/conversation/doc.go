// Package conversation implements the reply orchestrator core: the
// conversation state store, the debounce state machine (IDLE -> PENDING ->
// SENDING -> IDLE), and the delay scheduler that collapses bursts of inbound
// events into a single human-paced reply.
//
// Correctness does not depend on timer cancellation succeeding. Every
// scheduled fire captures the generation it was armed for, and TryBeginSend
// rejects any fire whose generation is no longer current. Cancellation of a
// superseded timer is purely an optimization.
package conversation
