// Package coordinator classifies the liveness of the external polling
// coordinator that produces device snapshots.
//
// Classification is a pure function of the time since the last successful
// update and the most recent success flag:
//
//	failed    most recent status had success=false
//	critical  elapsed >= critical_after
//	stale     stale_after <= elapsed < critical_after
//	healthy   elapsed < stale_after
//
// Monitor.Classify can be called at any cadence; a coordinator that stops
// reporting reads Critical once enough wall time has passed, with no new
// observation required.
package coordinator
