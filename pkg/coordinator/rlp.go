package coordinator

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// EncodeRLP makes LoginMessage an rlp.Encoder: it defers to loginMessageRLP,
// whose ProverTypes field is already the raw byte string the coordinator
// expects in place of a list of single-byte integers.
func (m LoginMessage) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, m.toRLP())
}

// rlpEncode returns the canonical RLP encoding of a LoginMessage, the
// buffer that gets Keccak-256-hashed and signed during login.
func rlpEncode(m LoginMessage) ([]byte, error) {
	return rlp.EncodeToBytes(m)
}
