package repo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/greenacre/farmcore/farmstate"
	"github.com/greenacre/farmcore/repo"
	"github.com/greenacre/farmcore/save"
)

func openTestRepository(t *testing.T) *repo.LevelRepository {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "farms")
	r, err := repo.OpenLevelRepository(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestLevelRepositoryRoundTrip(t *testing.T) {
	r := openTestRepository(t)
	addr := common.HexToAddress("0x00000000000000000000000000000000000001")
	state := farmstate.New(addr.Hex())
	_ = state.AddInventory("Sunflower", decimal.NewFromInt(1))

	doc := save.FarmDocument{ID: 7, Address: addr, Session: [32]byte{}, GameState: state.ToDocument()}
	err := r.UpdateGameState(context.Background(), doc, [32]byte{}, [32]byte{1})
	require.NoError(t, err)

	got, err := r.GetFarmByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, addr, got.Address)
	require.Equal(t, [32]byte{1}, got.Session)
	require.Equal(t, "1", got.GameState.Inventory["Sunflower"])
}

func TestLevelRepositoryMissingFarmReturnsNil(t *testing.T) {
	r := openTestRepository(t)
	got, err := r.GetFarmByID(context.Background(), 404)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestLevelRepositoryCASRejectsStaleSession(t *testing.T) {
	r := openTestRepository(t)
	addr := common.HexToAddress("0x00000000000000000000000000000000000001")
	state := farmstate.New(addr.Hex())
	doc := save.FarmDocument{ID: 1, Address: addr, GameState: state.ToDocument()}

	require.NoError(t, r.UpdateGameState(context.Background(), doc, [32]byte{}, [32]byte{1}))

	err := r.UpdateGameState(context.Background(), doc, [32]byte{}, [32]byte{2})
	require.ErrorIs(t, err, save.ErrSessionConflict)
}

func TestLevelEventStoreAppendAndScan(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "events")
	store, err := repo.OpenLevelEventStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	err = store.Append(context.Background(), 1, [32]byte{1}, nil)
	require.NoError(t, err)
	err = store.Append(context.Background(), 1, [32]byte{2}, nil)
	require.NoError(t, err)

	batches, err := store.BatchesForFarm(1)
	require.NoError(t, err)
	require.Len(t, batches, 2)
}
