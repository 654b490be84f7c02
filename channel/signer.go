package channel

import (
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
)

// Signer produces signatures of the protocol messages. Signatures are not
// verified by the protocol.
type Signer interface {
	Sign(data []byte) []byte
}

// KeySigner signs with the account private key.
type KeySigner struct {
	Key *keys.PrivateKey
}

// Sign implements Signer.
func (x KeySigner) Sign(data []byte) []byte {
	return x.Key.Sign(data)
}

// sign returns empty signature when s is nil.
func sign(s Signer, data []byte) []byte {
	if s == nil {
		return nil
	}
	return s.Sign(data)
}
