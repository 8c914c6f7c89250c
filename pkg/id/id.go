package id

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Token returns a 16-character random hex token (8 random bytes).
func Token() string { return TokenN(8) }

// TokenN returns a random hex token of n bytes (2n hex characters).
// It falls back to a time-seeded counter if the system randomness source
// fails, which keeps token generation non-blocking.
func TokenN(n int) string {
	if n <= 0 {
		n = 8
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		fallback(buf)
	}
	return fmtHex(buf)
}

var (
	fallbackMu  sync.Mutex
	fallbackSeq uint64
)

func fallback(buf []byte) {
	fallbackMu.Lock()
	fallbackSeq++
	seq := fallbackSeq
	fallbackMu.Unlock()

	var src [16]byte
	binary.BigEndian.PutUint64(src[0:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(src[8:16], seq)
	for i := range buf {
		buf[i] = src[i%len(src)]
	}
}

// fmtHex is a small, allocation-lean hex encoder.
func fmtHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexdigits[v>>4]
		out[i*2+1] = hexdigits[v&0x0f]
	}
	return string(out)
}
