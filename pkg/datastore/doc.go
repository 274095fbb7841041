// Package datastore is the on-disk CRUD layer under a colony data
// directory: per-address pointer/scratchpad files, the JSON update queue,
// and the active-wallet record. Every write goes through a rename-over-temp
// helper so a crash mid-write never leaves a torn file behind, restoring
// the atomicity the original implementation's pointer-file writes lacked.
package datastore
