// Package network defines the external network client PodManager drives.
//
// The concrete transport (pointer/scratchpad get/put/update, cost quoting,
// payment) lives outside this module entirely, the same way the original
// colonylib crate treats the Autonomi network client as a dependency rather
// than a component it implements. This package only carries the contract
// PodManager needs and a small in-memory fake used by tests.
package network
