package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// EmptyFingerprint is the fixed sentinel for an empty message window.
// A sentinel-to-sentinel comparison always reads as unchanged.
const EmptyFingerprint = "empty"

// Fingerprint computes a deterministic, order-sensitive digest of a message
// window. Any change in message ids, contents or ordering yields a new value.
func Fingerprint(w Window) string {
	if len(w) == 0 {
		return EmptyFingerprint
	}

	h := sha256.New()
	var buf [8]byte
	for _, m := range w {
		binary.BigEndian.PutUint64(buf[:], uint64(m.ID))
		h.Write(buf[:])
		h.Write([]byte(m.Text))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HasChanged reports whether a freshly computed fingerprint differs from the
// last one recorded for a chat. An unset last fingerprint counts as changed,
// except for the empty-window sentinel which never does.
func HasChanged(last, current string) bool {
	if current == EmptyFingerprint {
		return false
	}
	if last == "" {
		return true
	}
	return current != last
}
