// Package repository implements MySQL persistence. Methods suffixed Tx
// run inside a caller-owned transaction; the rest use the pool
// directly. Missing rows surface as sql.ErrNoRows and are translated
// at the store adapter boundary.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered.
var ErrEmailExists = errors.New("email already exists")
