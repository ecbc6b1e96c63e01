// Package harness runs conformance cases against the simulation engine.
//
// A case is a YAML fixture bundling a scenario with assertions about the
// run's outcome: whether it halted on its own, final resource levels,
// final unit statuses, and which events the coordinator drained. The
// harness builds the scenario, runs it under a deadline with a recording
// observer attached, and evaluates every assertion, collecting all
// failures rather than stopping at the first.
//
// Event timing is scheduler-dependent, so assertions address what must
// hold at the end of a run (levels, statuses, events present and their
// relative order), never wall-clock timing or exact event counts across
// nondeterministic paths.
package harness
