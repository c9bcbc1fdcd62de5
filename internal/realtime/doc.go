// Package realtime pushes task changes to connected clients over
// websockets.
//
// A Hub keeps the set of live sessions. Every successful mutation reaches
// the hub as an events.Event and is fanned out to all sessions as an
// "actionLogged" message. Clients may also send "taskUpdate",
// "conflictDetected" and "actionLog" messages, which are relayed unchanged
// to every other session as "taskUpdated", "resolveConflict" and
// "actionLogged".
//
// Delivery is best-effort: each session has a bounded send queue and a
// message for a session whose queue is full is dropped for that session.
package realtime
