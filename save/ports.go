package save

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/greenacre/farmcore/action"
	"github.com/greenacre/farmcore/farmstate"
	"github.com/greenacre/farmcore/withdraw"
)

// FarmDocument is the persisted shape from spec §6: the farm document plus
// its CAS session token.
type FarmDocument struct {
	ID        int64
	Address   common.Address
	Session   [32]byte
	GameState farmstate.Document
}

// SignatureBundle is what a Signer hands back for a withdrawal.
type SignatureBundle struct {
	Signature string `json:"signature"`
	Deadline  int64  `json:"deadline"`
}

// Repository is the consumed farm key/value store (C8). UpdateGameState
// implements compare-and-swap on Session: it must fail with ErrSessionConflict
// if the stored session no longer matches oldSession.
type Repository interface {
	GetFarmByID(ctx context.Context, id int64) (*FarmDocument, error)
	UpdateGameState(ctx context.Context, doc FarmDocument, oldSession, newSession [32]byte) error
}

// EventStore is the consumed audit log (C8).
type EventStore interface {
	Append(ctx context.Context, farmID int64, session [32]byte, actions []action.Action) error
}

// Chain is the consumed on-chain facade (C8). Amounts are wei, as returned
// by the real chain; LoadInventory is positional by catalog on-chain ID.
type Chain interface {
	LoadBalance(ctx context.Context, address common.Address) (*big.Int, error)
	LoadInventory(ctx context.Context, address common.Address) ([]*big.Int, error)
	OwnerOf(ctx context.Context, farmID int64) (common.Address, error)
}

// Signer is the consumed withdrawal signer (C8), called from the withdraw
// HTTP surface after withdraw.Prepare builds the payload.
type Signer interface {
	WithdrawSignature(ctx context.Context, payload withdraw.Payload) (SignatureBundle, error)
}

// Wallet is the consumed signature verifier (C8).
type Wallet interface {
	Verify(address common.Address, signature []byte, message []byte) bool
}

// Whitelist gates sync-like operations to allow-listed addresses. Consulted
// only when the request's Network is "mainnet" (spec §6); nil means every
// address is allowed, the right default for testnet-only deployments.
type Whitelist interface {
	IsWhitelisted(ctx context.Context, address common.Address) bool
}
