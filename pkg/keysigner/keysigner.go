// Package keysigner provides a per-worker secp256k1 identity: a key loaded
// from or generated onto disk, a compressed public key, and a Keccak-256
// signing oracle used by the coordinator login handshake.
package keysigner

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
)

const secretKeySize = 32

// KeySigner owns one worker's private key and exposes signing without ever
// exporting the secret.
type KeySigner struct {
	private   *ecdsa.PrivateKey
	publicHex string
}

// New loads the hex-encoded secret at path, or generates and persists a
// fresh one if the file does not exist yet. The key file, once written, is
// the worker's identity for the lifetime of the deployment: losing it
// forfeits any in-flight task persisted under the old public key.
func New(path string) (*KeySigner, error) {
	secret, err := readSecret(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading key file %s: %w", path, err)
		}
		secret, err = generateSecret(path)
		if err != nil {
			return nil, fmt.Errorf("generating key file %s: %w", path, err)
		}
	}
	return NewFromSecret(secret)
}

// NewFromSecret builds a KeySigner from a raw 32-byte secret, without
// touching disk. Used directly by tests that need a deterministic identity.
func NewFromSecret(secret []byte) (*KeySigner, error) {
	priv, err := crypto.ToECDSA(secret)
	if err != nil {
		return nil, fmt.Errorf("decoding secret key: %w", err)
	}
	pubBytes := crypto.CompressPubkey(&priv.PublicKey)
	return &KeySigner{
		private:   priv,
		publicHex: hex.EncodeToString(pubBytes),
	}, nil
}

func readSecret(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(string(content))
}

func generateSecret(path string) ([]byte, error) {
	secret := make([]byte, secretKeySize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("reading random bytes: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(secret)), 0o600); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}
	return secret, nil
}

// PublicKey returns the compressed SEC1 public key as lowercase hex, with no
// 0x prefix. This is the prover's identity as seen by the coordinator and
// the persistent task store's key namespace.
func (k *KeySigner) PublicKey() string {
	return k.publicHex
}

// SignBuffer Keccak-256-hashes buf and produces a 65-byte recoverable ECDSA
// signature r||s||v, hex-encoded with a 0x prefix. v is the raw 0/1
// recovery id, not EIP-155 adjusted: this is a login-handshake signature
// over an RLP buffer, not a transaction.
func (k *KeySigner) SignBuffer(buf []byte) (string, error) {
	digest := crypto.Keccak256(buf)
	sig, err := crypto.Sign(digest, k.private)
	if err != nil {
		return "", fmt.Errorf("signing buffer: %w", err)
	}
	return "0x" + hex.EncodeToString(sig), nil
}
