package repo

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/greenacre/farmcore/save"
	"github.com/greenacre/farmcore/withdraw"
)

// WithdrawSignatureTTL is how long a withdrawal signature remains valid
// once issued, matching spec §6's deadline field.
const WithdrawSignatureTTL = 10 * time.Minute

// WithdrawSignature implements save.Signer by ed25519-signing the
// withdraw.Payload with the keystore's operator key, the counterpart to the
// on-chain contract's signature check before releasing funds.
func (k *FileKeystore) WithdrawSignature(_ context.Context, payload withdraw.Payload) (save.SignatureBundle, error) {
	deadline := time.Now().Add(WithdrawSignatureTTL).Unix()
	msg, err := withdrawSigningMessage(payload, deadline)
	if err != nil {
		return save.SignatureBundle{}, fmt.Errorf("repo: encode withdraw payload: %w", err)
	}
	sig := ed25519.Sign(k.priv, msg)
	return save.SignatureBundle{
		Signature: hex.EncodeToString(sig),
		Deadline:  deadline,
	}, nil
}

func withdrawSigningMessage(payload withdraw.Payload, deadline int64) ([]byte, error) {
	body := struct {
		withdraw.Payload
		Deadline int64 `json:"deadline"`
	}{Payload: payload, Deadline: deadline}
	return json.Marshal(body)
}

// AddressBook resolves which ed25519 public key backs a given address, the
// lookup a Wallet needs to verify a save request's signature. Addresses are
// the first 20 bytes of SHA-256(pubkey), matching the teacher's derivation
// in crypto.PublicKey.Address.
type AddressBook struct {
	mu   sync.RWMutex
	keys map[common.Address]ed25519.PublicKey
}

// NewAddressBook creates an empty AddressBook.
func NewAddressBook() *AddressBook {
	return &AddressBook{keys: make(map[common.Address]ed25519.PublicKey)}
}

// Register associates pub with the address it derives, so that address can
// later be verified against.
func (b *AddressBook) Register(pub ed25519.PublicKey) common.Address {
	addr := AddressOf(pub)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys[addr] = pub
	return addr
}

// AddressOf derives the 20-byte address for an ed25519 public key.
func AddressOf(pub ed25519.PublicKey) common.Address {
	h := sha256.Sum256(pub)
	return common.BytesToAddress(h[:20])
}

// Verify implements save.Wallet: it looks up the public key registered for
// address and checks the ed25519 signature over message.
func (b *AddressBook) Verify(address common.Address, signature []byte, message []byte) bool {
	b.mu.RLock()
	pub, ok := b.keys[address]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	return ed25519.Verify(pub, message, signature)
}
