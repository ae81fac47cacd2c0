package api

import (
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash of the request: module id and
// payload fields in sorted key order. Used to correlate log lines.
func (r GenerationRequest) Hash() string {
	h := blake3.New()

	h.Write([]byte(r.ModuleID))
	h.Write([]byte{0})

	keys := make([]string, 0, len(r.Payload))
	for k := range r.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(r.Payload[k]))
		h.Write([]byte{0})
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// ShortHash is the first 12 hex characters of Hash.
func (r GenerationRequest) ShortHash() string {
	return r.Hash()[:12]
}
