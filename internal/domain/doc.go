// Package domain holds the core types of the reply orchestrator: inbound
// events, conversation state, sentiment results, and the ports implemented
// by the storage, messaging, and generation adapters.
package domain
