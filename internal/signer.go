package internal

import (
	"crypto/hmac"
	"crypto/sha1"
)

// Signer computes the gateway checksum: HMAC-SHA1 over the code-page bytes of
// the encoded payload, keyed by the code-page bytes of the merchant secret,
// rendered as uppercase hex. The gateway recomputes the digest independently
// and compares it byte-for-byte, so the output is fully deterministic.
type Signer struct {
	secret string
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Sign returns the checksum for payload. The payload here is the already
// Base64-encoded request block; the digest is never computed over raw text.
func (s *Signer) Sign(payload string) (string, error) {
	key, err := EncodeText(s.secret)
	if err != nil {
		return "", err
	}
	message, err := EncodeText(payload)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha1.New, key)
	mac.Write(message)
	return HexEncode(mac.Sum(nil)), nil
}

// Verify checks a checksum received from the gateway against payload.
// The comparison is case-sensitive, matching the gateway's own check.
func (s *Signer) Verify(payload, checksum string) bool {
	want, err := s.Sign(payload)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(want), []byte(checksum))
}
