// Package service contains the application use cases. TaskService is the
// mutation orchestrator: every task change runs the same pipeline of
// resolve actor, validate, persist, audit and emit.
//
// The service depends on the store interfaces, the audit sink and the event
// emitter, never on their concrete implementations.
package service
