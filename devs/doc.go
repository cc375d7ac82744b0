// Package devs provides a hierarchical discrete-event simulation kernel
// implementing the DEVS formalism in its classic (CDEVS) and parallel
// (PDEVS) variants.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - atomic.go: atomic models and the function table users supply for
//     their transition, output and time-advance behavior
//   - coupled.go: coupled models, children and the EIC/EOC/IC couplings
//   - root.go: the root coordinator and the simulation loop
//
// # Architecture
//
// A user builds a static model tree out of AtomicModel leaves and
// CoupledModel interior nodes, then hands the root to NewRootCoordinator.
// The kernel mirrors the tree with a processor tree: a Simulator per
// atomic model, a Coordinator per coupled model, and a RootCoordinator at
// the apex driving the loop. Processors exchange four messages:
//
//	Init       seed time_last/time_next bottom-up at t = 0
//	Collect    invoke output functions of imminent models, route results
//	Transition invoke internal/external/confluent transitions
//	Teardown   invoke post-simulation hooks
//
// Coordinators keep their children in a CalendarQueue (calendar_queue.go),
// a bucketed priority queue keyed by next activation time, so the next
// event across the whole tree is found in amortized constant time.
//
// The Formalism tag selects the protocol variant: CDEVS serializes
// simultaneous events through the coupled model's select function and
// delivers one value per port; PDEVS activates every imminent model
// concurrently and delivers port-keyed bags.
//
// Ready-made atomic models (generators, servers, collectors) live in the
// models sub-package.
package devs
