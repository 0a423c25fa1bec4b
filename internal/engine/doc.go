// Package engine implements the day-stepped epidemic simulation core.
//
// A single Engine value owns the whole mutable world state: the live
// virus parameters, the per-country map, the global aggregates, and the
// variant/event bookkeeping. One simulated day advances through a fixed
// pipeline:
//
//	variant schedule → historical events → spread → government response
//	→ outcomes → daily global stats → snapshot
//
// All mutations happen under the engine mutex, one day at a time; a tick
// is atomic with respect to observers and no partial-day state is ever
// published. Consumers receive typed notifications (Tick,
// HistoricalEvent, VariantChanged) through an outbound queue, delivered
// exactly once per occurrence.
//
// Every stochastic decision draws from one seedable generator, and all
// per-country iteration is in sorted code order, so a run is fully
// reproducible from its seed.
package engine
