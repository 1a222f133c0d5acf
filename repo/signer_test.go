package repo_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/greenacre/farmcore/repo"
	"github.com/greenacre/farmcore/withdraw"
)

func TestFileKeystoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operator.json")
	ks, err := repo.GenerateFileKeystore(path, "correct horse battery staple")
	require.NoError(t, err)

	reopened, err := repo.OpenFileKeystore(path, "correct horse battery staple")
	require.NoError(t, err)

	payload := withdraw.Payload{FarmID: 1, SFL: decimal.NewFromInt(10), Tax: 3000}
	bundle1, err := ks.WithdrawSignature(context.Background(), payload)
	require.NoError(t, err)
	bundle2, err := reopened.WithdrawSignature(context.Background(), payload)
	require.NoError(t, err)

	require.NotEmpty(t, bundle1.Signature)
	require.NotEmpty(t, bundle2.Signature)
}

func TestFileKeystoreWrongPasswordRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operator.json")
	_, err := repo.GenerateFileKeystore(path, "correct horse battery staple")
	require.NoError(t, err)

	_, err = repo.OpenFileKeystore(path, "wrong password")
	require.Error(t, err)
}

func TestAddressBookVerifiesRegisteredSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	book := repo.NewAddressBook()
	addr := book.Register(pub)

	message := []byte("farm 1 save request")
	sig := ed25519.Sign(priv, message)

	require.True(t, book.Verify(addr, sig, message))
}

func TestAddressBookRejectsUnknownAddress(t *testing.T) {
	book := repo.NewAddressBook()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	message := []byte("hello")
	sig := ed25519.Sign(priv, message)

	require.False(t, book.Verify(repo.AddressOf(pub), sig, message))
}

func TestAddressBookRejectsTamperedMessage(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	book := repo.NewAddressBook()
	addr := book.Register(pub)

	sig := ed25519.Sign(priv, []byte("original"))
	require.False(t, book.Verify(addr, sig, []byte("tampered")))
}
