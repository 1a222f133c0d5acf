package repo

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/greenacre/farmcore/catalog"
)

// farmContractABI covers the three read-only methods the save pipeline
// needs off the farm contract: the player's SFL balance, their per-item
// inventory, and a farm NFT's owner.
const farmContractABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"name":"itemBalanceOf","type":"function","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"id","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"name":"ownerOf","type":"function","stateMutability":"view",
	 "inputs":[{"name":"farmId","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

// EthChain implements save.Chain against a live EVM farm contract via
// go-ethereum's bind.BoundContract, the same call-by-method-name shape the
// rest of the pack's ethereum clients use.
type EthChain struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	cat      *catalog.Catalog
}

// NewEthChain dials rpcURL and binds the farm contract at contractAddr.
func NewEthChain(rpcURL string, contractAddr common.Address, cat *catalog.Catalog) (*EthChain, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("repo: dial %s: %w", rpcURL, err)
	}
	parsed, err := abi.JSON(strings.NewReader(farmContractABI))
	if err != nil {
		return nil, fmt.Errorf("repo: parse farm contract abi: %w", err)
	}
	contract := bind.NewBoundContract(contractAddr, parsed, client, client, client)
	return &EthChain{client: client, contract: contract, cat: cat}, nil
}

func (c *EthChain) Close() {
	c.client.Close()
}

func (c *EthChain) LoadBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	out, err := c.call(ctx, "balanceOf", address)
	if err != nil {
		return nil, fmt.Errorf("repo: balanceOf(%s): %w", address.Hex(), err)
	}
	return out[0].(*big.Int), nil
}

// LoadInventory returns a slice positional by on-chain item ID, sized to
// cover every ID the catalog knows about.
func (c *EthChain) LoadInventory(ctx context.Context, address common.Address) ([]*big.Int, error) {
	maxID := c.cat.MaxOnChainID()
	balances := make([]*big.Int, maxID+1)
	for id := 0; id <= maxID; id++ {
		out, err := c.call(ctx, "itemBalanceOf", address, big.NewInt(int64(id)))
		if err != nil {
			return nil, fmt.Errorf("repo: itemBalanceOf(%s, %d): %w", address.Hex(), id, err)
		}
		balances[id] = out[0].(*big.Int)
	}
	return balances, nil
}

func (c *EthChain) OwnerOf(ctx context.Context, farmID int64) (common.Address, error) {
	out, err := c.call(ctx, "ownerOf", big.NewInt(farmID))
	if err != nil {
		return common.Address{}, fmt.Errorf("repo: ownerOf(%d): %w", farmID, err)
	}
	return out[0].(common.Address), nil
}

func (c *EthChain) call(ctx context.Context, method string, args ...any) ([]any, error) {
	opts := &bind.CallOpts{Context: ctx}
	var out []any
	if err := c.contract.Call(opts, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}
