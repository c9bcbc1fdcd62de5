// Package events decouples components that produce domain events from the
// components that react to them.
//
// The mutation path emits an ActionLogged event after every successful task
// change; the realtime package registers a handler that fans it out to
// connected clients. Neither side imports the other.
package events
