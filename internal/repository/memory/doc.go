// Package memory provides in-process implementations of the repository interfaces.
//
// Each store guards its state with one mutex and performs every check-and-write
// under it, which gives the same per-row linearizability the PostgreSQL
// implementations get from conditional UPDATE statements. Used by STORAGE=memory
// and by the service property tests.
package memory
