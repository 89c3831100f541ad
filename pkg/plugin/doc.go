// Package plugin runs third-party extension modules in isolated workers and
// supervises all traffic between them and the host.
//
// A worker is an isolated JavaScript runtime with no access to host memory;
// the host talks to it exclusively through protocol messages. Each
// request/reply pair is matched by correlation id, never by ordering, so a
// slow reply cannot be attributed to the wrong caller. Every dispatched call
// resolves exactly once: with the worker's reply, with a timeout after the
// worker is force-terminated, or with a crash error when the worker exits
// while calls are in flight.
//
// Worker misbehavior is contained. A module that loops forever is
// interrupted and its descriptor marked crashed; the supervisor never
// restarts it on its own. Malformed or uncorrelated messages are logged and
// discarded.
//
//	sup, _ := plugin.NewSupervisor(plugin.NewDirLoader("./plugins"))
//	defer sup.Close()
//
//	if err := sup.Load(ctx, "seo-meta"); err != nil { ... }
//	reply, err := sup.CallHook(ctx, "seo-meta", "page.render", payload, 2*time.Second)
package plugin
