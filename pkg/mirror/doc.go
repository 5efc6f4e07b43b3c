// Package mirror replays interactions from one controlling browser window
// onto a fixed list of follower windows.
//
// An event recorder script is injected into the controlling page. It derives a
// best-effort selector (tag, #id, .class.list) for each click and input target
// and appends records to an in-page queue. Two loops then run concurrently:
//
//   - DrainLoop empties the queue every ActionInterval with a single
//     splice(0) and hands the batch to the Replicator, which applies each
//     record to each follower in order. A failure affects only that
//     (record, follower) pair and is never retried.
//   - URLWatcher compares the controller's URL every URLInterval and navigates
//     every follower when it changes.
//
// Selectors are not unique and not stable across navigations; a follower
// whose DOM diverges may receive an action on the wrong element or none at all.
// Follower state is never reconciled.
package mirror
