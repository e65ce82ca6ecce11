// Package session owns the AR session lifecycle: capability check,
// negotiation, reference-space acquisition, hit-test source creation and
// teardown.
//
// A Manager moves through Inactive → Negotiating → Active → Ended. Ended is
// terminal; a new Manager is needed for the next session. Negotiation is
// asynchronous: Advance polls the outstanding device requests once per
// frame and never blocks.
package session
