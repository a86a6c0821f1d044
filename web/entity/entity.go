// Package entity defines data structures shared by the web layer.
package entity

// Msg is the JSON error envelope. Handlers return either a domain
// object or this; internal detail never leaks into Message.
type Msg struct {
	Message string `json:"message"`
}
