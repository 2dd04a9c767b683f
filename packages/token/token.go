// Package token generates unique, URL-safe opaque strings such as multipart
// boundaries.
//
// Tokens need to be unique, not unguessable, so they are built from a hash of
// the current time, pseudo-random numbers and a time-based UUID rather than
// from crypto/rand.
package token

import (
	"crypto/sha1"
	"encoding/base64"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// New returns a fresh base64url token without padding (27 characters).
func New() string {
	h := sha1.New()
	h.Write(strconv.AppendUint(nil, rand.Uint64(), 16))
	h.Write(strconv.AppendUint(nil, rand.Uint64(), 16))
	h.Write(strconv.AppendInt(nil, time.Now().UnixNano(), 16))
	if id, err := uuid.NewUUID(); err == nil {
		h.Write(id[:])
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
