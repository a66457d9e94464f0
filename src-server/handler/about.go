// Package handler holds the Discord interaction handlers.
//
// Each command comes as a pair of functions: a public one that registers the
// handler and the command description on the AppState, and a private one that
// handles the interaction. Commands with subcommands live in their own
// package (see event_handler) and dispatch through a local map.
//
// Only return errors when it's the backend's fault, nil if user's fault.
package handler
