// Package repository implements data access over the MySQL store.  Each
// entity gets its own repository with plain methods for single-statement
// reads and *Tx variants that run inside a caller-owned transaction.
// Sentinel errors defined next to each repository let the booking layer
// distinguish "absent" from "broken" without inspecting driver errors.
package repository

import "errors"

// ErrNoRowsAffected is returned by update and delete helpers when the
// statement matched nothing.  Callers translate it into the appropriate
// domain error (not found, no active lock, ...).
var ErrNoRowsAffected = errors.New("no rows affected")
