// Package xrsim provides a scripted AR device for headless runs and tests.
//
// A Device implements both xr.Device and xr.Scheduler. Each call to Step
// is one display refresh: futures whose delay has elapsed complete, then
// the scheduled frame callback runs with the hit results the Script lists
// for that step.
//
// Scripts are YAML:
//
//	name: place-once
//	device:
//	  session_delay: 1
//	  source_delay: 1
//	asset:
//	  delay: 2
//	frames:
//	  - hits: []
//	    repeat: 3
//	  - hits: [{position: [0, 0, -1]}]
//	  - hits: [{position: [0, 0, -1]}]
//	    confirm: true
//
// A run can be captured as a Recording and written as CBOR; a decoded
// Recording converts back to a Script for replay.
package xrsim
