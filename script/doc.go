// Package script backs declaratively configured loops with Lua.
//
// Each loop gets its own sandboxed interpreter state. That is safe without
// locking for the same reason loop state in Go needs none: a loop's
// handlers and step only ever run on the loop's own goroutine.
//
// A loop script defines one function per subscribed kind, named after the
// kind in snake case, and, for active loops, a step function:
//
//	function on_line_received(event)
//	    print("got " .. event.fields.line)
//	    publish("WordReceived", { word = event.fields.line })
//	end
//
//	function step()
//	    -- repeated unit of work for active loops
//	end
//
// The sandbox exposes publish(kind, fields), request_exit(), stopping(),
// log(msg), sleep(ms), read_line(), and a state table seeded from the
// configuration's initial values. Only the base, table, string, and math
// libraries are opened; io, os, debug, and package stay closed, with
// sleep and read_line as the narrow replacements the example loops need.
//
// Missing handler or step functions are reported when the script is
// loaded, before the runtime is built.
package script
