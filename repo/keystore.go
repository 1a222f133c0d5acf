package repo

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/pbkdf2"
)

// keystoreFile is the on-disk, encrypted-at-rest shape of a signing key.
type keystoreFile struct {
	PubKey     string `json:"pub_key"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipher_text"`
}

// FileKeystore encrypts the operator's withdrawal-signing key at rest with
// AES-GCM, key-derived from a password via PBKDF2. It backs both Signer and
// Wallet: the same ed25519 key pair signs outgoing withdrawal payloads and
// verifies incoming save-request signatures from whichever address the
// pair corresponds to.
type FileKeystore struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// SaveKeystore encrypts priv with password and writes it to path.
func SaveKeystore(path, password string, priv ed25519.PrivateKey) error {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}
	key := deriveKeystoreKey(password, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	cipherText := gcm.Seal(nil, nonce, priv, nil)

	pub := priv.Public().(ed25519.PublicKey)
	ks := keystoreFile{
		PubKey:     hex.EncodeToString(pub),
		Salt:       hex.EncodeToString(salt),
		Nonce:      hex.EncodeToString(nonce),
		CipherText: hex.EncodeToString(cipherText),
	}
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// OpenFileKeystore decrypts the keystore at path using password.
func OpenFileKeystore(path, password string) (*FileKeystore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, err
	}
	salt, err := hex.DecodeString(ks.Salt)
	if err != nil {
		return nil, err
	}
	nonce, err := hex.DecodeString(ks.Nonce)
	if err != nil {
		return nil, err
	}
	cipherText, err := hex.DecodeString(ks.CipherText)
	if err != nil {
		return nil, err
	}
	pub, err := hex.DecodeString(ks.PubKey)
	if err != nil {
		return nil, err
	}

	key := deriveKeystoreKey(password, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	privBytes, err := gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, errors.New("wrong password or corrupted keystore")
	}
	return &FileKeystore{priv: ed25519.PrivateKey(privBytes), pub: ed25519.PublicKey(pub)}, nil
}

// GenerateFileKeystore creates a fresh ed25519 key pair and writes it to
// path under password, returning the opened keystore.
func GenerateFileKeystore(path, password string) (*FileKeystore, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	if err := SaveKeystore(path, password, priv); err != nil {
		return nil, err
	}
	return &FileKeystore{priv: priv, pub: pub}, nil
}

func deriveKeystoreKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, 210_000, 32, sha256.New)
}

// Address returns the 20-byte address the keystore's public key derives to,
// via the same SHA-256-then-truncate rule AddressOf uses.
func (k *FileKeystore) Address() common.Address {
	return AddressOf(k.pub)
}

// Verify implements save.Wallet directly off the keystore's own key pair, so
// a single-operator farmd deployment can run end to end without a separate
// AddressBook registration step.
func (k *FileKeystore) Verify(address common.Address, signature []byte, message []byte) bool {
	if address != k.Address() {
		return false
	}
	return ed25519.Verify(k.pub, message, signature)
}
