// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// newID returns a ULID for the given time. IDs generated from one process
// sort in creation order, which the change log relies on.
func newID(t time.Time) string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// validToken reports whether s is a well-formed change-log token.
func validToken(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
