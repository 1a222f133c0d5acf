package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/greenacre/farmcore/action"
	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/farmstate"
	"github.com/greenacre/farmcore/httpapi"
	"github.com/greenacre/farmcore/save"
	"github.com/greenacre/farmcore/withdraw"
)

type stubRepository struct{ doc save.FarmDocument }

func (r *stubRepository) GetFarmByID(_ context.Context, id int64) (*save.FarmDocument, error) {
	if id != r.doc.ID {
		return nil, nil
	}
	d := r.doc
	return &d, nil
}
func (r *stubRepository) UpdateGameState(_ context.Context, doc save.FarmDocument, oldSession, newSession [32]byte) error {
	if oldSession != r.doc.Session {
		return save.ErrSessionConflict
	}
	r.doc.Session = newSession
	r.doc.GameState = doc.GameState
	return nil
}

type stubEventStore struct{}

func (stubEventStore) Append(context.Context, int64, [32]byte, []action.Action) error { return nil }

type stubChain struct{ owner common.Address }

func (c stubChain) LoadBalance(context.Context, common.Address) (*big.Int, error) { return big.NewInt(0), nil }
func (c stubChain) LoadInventory(context.Context, common.Address) ([]*big.Int, error) {
	return nil, nil
}
func (c stubChain) OwnerOf(context.Context, int64) (common.Address, error) { return c.owner, nil }

type acceptAllWallet struct{}

func (acceptAllWallet) Verify(common.Address, []byte, []byte) bool { return true }

type stubSigner struct{}

func (stubSigner) WithdrawSignature(context.Context, withdraw.Payload) (save.SignatureBundle, error) {
	return save.SignatureBundle{Signature: "deadbeef", Deadline: 123}, nil
}

func newTestHandler(t *testing.T) (*httpapi.Handler, *stubRepository) {
	t.Helper()
	addr := common.HexToAddress("0x00000000000000000000000000000000000001")
	repo := &stubRepository{doc: save.FarmDocument{
		ID:        1,
		Address:   addr,
		Session:   [32]byte{1},
		GameState: farmstate.New(addr.Hex()).ToDocument(),
	}}
	deps := save.Deps{
		Repository: repo,
		EventStore: stubEventStore{},
		Chain:      stubChain{owner: addr},
		Wallet:     acceptAllWallet{},
		Catalog:    catalog.Default,
	}
	h := httpapi.NewHandler(deps, stubSigner{}, catalog.Default, "testnet")
	h.Now = func() time.Time { return time.Now() }
	return h, repo
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestHandleSaveSuccess(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httpapi.NewServer("127.0.0.1:0", h, "")
	require.NoError(t, server.Start())
	defer server.Stop()

	resp := postJSON(t, fmt.Sprintf("http://%s/save", server.Addr()), httpapi.SaveRequest{
		FarmID:    1,
		Sender:    "0x0000000000000000000000000000000000000001",
		Signature: "00",
		Actions:   []action.Action{},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot farmstate.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
}

func TestHandleSaveUnknownFarmReturns400(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httpapi.NewServer("127.0.0.1:0", h, "")
	require.NoError(t, server.Start())
	defer server.Stop()

	resp := postJSON(t, fmt.Sprintf("http://%s/save", server.Addr()), httpapi.SaveRequest{
		FarmID:    99,
		Sender:    "0x0000000000000000000000000000000000000001",
		Signature: "00",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSaveNotOwnerReturns403(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httpapi.NewServer("127.0.0.1:0", h, "")
	require.NoError(t, server.Start())
	defer server.Stop()

	resp := postJSON(t, fmt.Sprintf("http://%s/save", server.Addr()), httpapi.SaveRequest{
		FarmID:    1,
		Sender:    "0x0000000000000000000000000000000000000002",
		Signature: "00",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandleWithdrawSuccess(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httpapi.NewServer("127.0.0.1:0", h, "")
	require.NoError(t, server.Start())
	defer server.Stop()

	axeID, ok := catalog.Default.IDForName("Axe")
	require.True(t, ok)

	resp := postJSON(t, fmt.Sprintf("http://%s/withdraw", server.Addr()), httpapi.WithdrawRequest{
		FarmID:    1,
		SessionID: "deadbeef",
		Sender:    "0xfarmer",
		SFL:       "0",
		IDs:       []int{axeID},
		Amounts:   []string{"1"},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out httpapi.WithdrawResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "deadbeef", out.Signature)
	require.Equal(t, int64(123), out.Deadline)
}

func TestHandleWithdrawNonWithdrawableReturns400(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httpapi.NewServer("127.0.0.1:0", h, "")
	require.NoError(t, server.Start())
	defer server.Stop()

	sunflowerID, ok := catalog.Default.IDForName("Sunflower")
	require.True(t, ok)

	resp := postJSON(t, fmt.Sprintf("http://%s/withdraw", server.Addr()), httpapi.WithdrawRequest{
		SFL:     "0",
		IDs:     []int{sunflowerID},
		Amounts: []string{"1"},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthRejectsMissingBearerToken(t *testing.T) {
	h, _ := newTestHandler(t)
	server := httpapi.NewServer("127.0.0.1:0", h, "secret-token")
	require.NoError(t, server.Start())
	defer server.Stop()

	resp := postJSON(t, fmt.Sprintf("http://%s/save", server.Addr()), httpapi.SaveRequest{FarmID: 1})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
