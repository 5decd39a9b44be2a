// Package replay drives a user-scripted Diameter scenario over a real
// transport connection: it auto-answers inbound Device-Watchdog
// requests, captures the exchanged messages for baseline analysis, and
// re-runs the scenario once per mutation descriptor, substituting the
// descriptor's edit at its anchored outgoing message.
package replay
