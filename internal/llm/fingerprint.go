package llm

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint computes the stable, byte-exact cache key for a prompt: the
// SHA-256 digest of the model ID and the prompt's UTF-8 bytes, with no
// normalization. Generalizes original_source's hashlib.md5(model_id+query)
// scheme to a stronger digest.
func Fingerprint(model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}
