// Package core runs spawns: it loads a profile's source text, parses it into
// rows, maps the rows to placement records and places the matching prefabs.
//
// The package has no knowledge of HTTP or terminals. The web server, the CLI
// and the TUI all drive the same [Service].
//
// # Spawn
//
// [Service.Spawn] performs one batch:
//
//  1. Acquire a slot on the [SpawnLimiter]
//  2. Load the profile source through the source.Provider
//  3. Parse with tabular.Parse and map with placement.Mapper
//  4. Clear the scene, then resolve and place each record in order
//  5. Record a [SpawnResult] in the bounded [History]
//
// Mapping happens before the scene is cleared, so a batch that fails to map
// leaves the previous scene in place. Records whose prefab is not in the
// catalog are skipped and listed in SpawnResult.Unresolved.
//
// # Error Handling
//
// Technical errors are mapped to operator messages with [MapError]. Codes are
// grouped by concern: CONV (conversion), PRF (profiles), SRC (sources), PFB
// (prefabs), SPN (spawn slots), BRK (broker), DB (catalog database) and UPL
// (request lifecycle).
package core
