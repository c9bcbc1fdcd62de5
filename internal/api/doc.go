// Package api handles incoming HTTP requests, request validation and
// response formatting for the task endpoints. It translates HTTP concerns
// to TaskService calls and service errors back to status codes.
package api
