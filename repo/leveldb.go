// Package repo holds reference implementations of the save package's
// consumed ports (C8): the farm repository, the event log, the on-chain
// facade, and the signing/verification boundary.
package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/greenacre/farmcore/action"
	"github.com/greenacre/farmcore/farmstate"
	"github.com/greenacre/farmcore/save"
)

const (
	prefixFarm  = "farm:"
	prefixEvent = "event:"
)

// LevelRepository implements save.Repository on top of LevelDB. A farm
// document is stored as its JSON wire form keyed by ID; UpdateGameState's
// compare-and-swap reads the stored session back before writing so two
// concurrent saves against the same farm never both succeed.
type LevelRepository struct {
	db *leveldb.DB
}

// farmRecord is the on-disk shape: FarmDocument plus the address and
// session in directly comparable form.
type farmRecord struct {
	ID        int64              `json:"id"`
	Address   string             `json:"address"`
	Session   [32]byte           `json:"session"`
	GameState json.RawMessage    `json:"gameState"`
}

// OpenLevelRepository opens (or creates) a LevelDB database at path for
// storing farm documents.
func OpenLevelRepository(path string) (*LevelRepository, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb repository %q: %w", path, err)
	}
	return &LevelRepository{db: db}, nil
}

func (r *LevelRepository) Close() error {
	return r.db.Close()
}

func farmKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%d", prefixFarm, id))
}

func (r *LevelRepository) GetFarmByID(_ context.Context, id int64) (*save.FarmDocument, error) {
	data, err := r.db.Get(farmKey(id), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo: get farm %d: %w", id, err)
	}
	var rec farmRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("repo: decode farm %d: %w", id, err)
	}
	var gameState farmstate.Document
	if len(rec.GameState) > 0 {
		if err := json.Unmarshal(rec.GameState, &gameState); err != nil {
			return nil, fmt.Errorf("repo: decode farm %d game state: %w", id, err)
		}
	}
	return &save.FarmDocument{
		ID:        rec.ID,
		Address:   common.HexToAddress(rec.Address),
		Session:   rec.Session,
		GameState: gameState,
	}, nil
}

func (r *LevelRepository) UpdateGameState(_ context.Context, doc save.FarmDocument, oldSession, newSession [32]byte) error {
	// The transaction holds LevelDB's write lock from the session read to
	// the commit, so no other writer can slip in between check and write.
	tx, err := r.db.OpenTransaction()
	if err != nil {
		return fmt.Errorf("repo: open transaction for farm %d: %w", doc.ID, err)
	}
	defer tx.Discard()

	existing, err := tx.Get(farmKey(doc.ID), nil)
	if err != nil && err != leveldb.ErrNotFound {
		return fmt.Errorf("repo: read farm %d for cas: %w", doc.ID, err)
	}
	if err != leveldb.ErrNotFound {
		var rec farmRecord
		if err := json.Unmarshal(existing, &rec); err != nil {
			return fmt.Errorf("repo: decode farm %d for cas: %w", doc.ID, err)
		}
		if rec.Session != oldSession {
			return save.ErrSessionConflict
		}
	} else if oldSession != ([32]byte{}) {
		// Caller believes a prior session exists but none is stored.
		return save.ErrSessionConflict
	}

	gameStateJSON, err := json.Marshal(doc.GameState)
	if err != nil {
		return fmt.Errorf("repo: encode farm %d game state: %w", doc.ID, err)
	}
	rec := farmRecord{
		ID:        doc.ID,
		Address:   doc.Address.Hex(),
		Session:   newSession,
		GameState: gameStateJSON,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("repo: encode farm %d: %w", doc.ID, err)
	}
	if err := tx.Put(farmKey(doc.ID), data, nil); err != nil {
		return fmt.Errorf("repo: write farm %d: %w", doc.ID, err)
	}
	return tx.Commit()
}

// LevelEventStore implements save.EventStore on top of LevelDB, appending
// one record per save under an "event:<farmID>:<session hex>" key, so a
// prefix scan on the farm ID finds every batch of that farm. The scan order
// is the order of the session hex, not the order the batches were appended.
type LevelEventStore struct {
	db *leveldb.DB
}

// OpenLevelEventStore opens (or creates) a LevelDB database at path for the
// append-only action audit log.
func OpenLevelEventStore(path string) (*LevelEventStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb event store %q: %w", path, err)
	}
	return &LevelEventStore{db: db}, nil
}

func (e *LevelEventStore) Close() error {
	return e.db.Close()
}

func (e *LevelEventStore) Append(_ context.Context, farmID int64, session [32]byte, actions []action.Action) error {
	data, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("repo: encode event batch for farm %d: %w", farmID, err)
	}
	key := []byte(fmt.Sprintf("%s%d:%x", prefixEvent, farmID, session))
	return e.db.Put(key, data, nil)
}

// BatchesForFarm returns every appended action batch for farmID, in the
// order LevelDB's key-sorted prefix scan yields them. Intended for
// diagnostics and replay audits, not the hot save path.
func (e *LevelEventStore) BatchesForFarm(farmID int64) ([][]action.Action, error) {
	prefix := []byte(fmt.Sprintf("%s%d:", prefixEvent, farmID))
	it := e.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()

	var batches [][]action.Action
	for it.Next() {
		var batch []action.Action
		if err := json.Unmarshal(it.Value(), &batch); err != nil {
			return nil, fmt.Errorf("repo: decode event batch for farm %d: %w", farmID, err)
		}
		batches = append(batches, batch)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("repo: scan events for farm %d: %w", farmID, err)
	}
	return batches, nil
}
