// Package config loads a declarative description of a loopkit runtime:
// the event kinds with their field schemas, the loops with their
// disciplines, publish/subscribe sets, scripts and initial state, and the
// log destination.
//
// Files are YAML or TOML, chosen by extension. A minimal example:
//
//	events:
//	  - name: LineReceived
//	    fields: { line: string }
//	loops:
//	  - name: ReadStdin
//	    kind: active
//	    publishes: [LineReceived]
//	    script: read_stdin.lua
//	  - name: PrintStdout
//	    kind: reactive
//	    subscribes: [LineReceived]
//	    script: print_stdout.lua
//	log:
//	  file: loopkit.log
//	  level: info
//
// Validate applies the same structural checks the runtime builder will,
// so a configuration can be rejected before any script is loaded.
// BuildLoops turns a validated file into loop configurations ready for the
// runtime builder, delegating handler and step construction to a
// LoopResolver (the script package provides one backed by Lua).
package config
