// Package evm reaches the deployed SPBU Diamond over JSON-RPC.
package evm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
)

type Config struct {
	RPCURL          string
	ContractAddress string
	ABIPath         string
	// ChainID zero means ask the node.
	ChainID int64

	// Keystore is the encrypted key JSON. Without it the client is read-only.
	Keystore   []byte
	Passphrase string
}

// Backend is what the client needs from a node; *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type Client struct {
	backend  Backend
	abi      abi.ABI
	address  common.Address
	contract *bind.BoundContract
	opts     *bind.TransactOpts
	log      logging.Logger
}

var _ ledger.Client = (*Client)(nil)

// LoadABI parses the contract ABI JSON at path.
func LoadABI(path string) (abi.ABI, error) {
	f, err := os.Open(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("open abi: %w", err)
	}
	defer f.Close()
	parsed, err := abi.JSON(f)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	return parsed, nil
}

// Dial connects to the node, loads the ABI and unlocks the signer when a
// keystore is configured.
func Dial(ctx context.Context, cfg Config, log logging.Logger) (*Client, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	parsed, err := LoadABI(cfg.ABIPath)
	if err != nil {
		return nil, err
	}
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}

	var opts *bind.TransactOpts
	if len(cfg.Keystore) > 0 {
		chainID := big.NewInt(cfg.ChainID)
		if cfg.ChainID == 0 {
			chainID, err = eth.ChainID(ctx)
			if err != nil {
				eth.Close()
				return nil, fmt.Errorf("chain id: %w", err)
			}
		}
		opts, err = bind.NewTransactorWithChainID(bytes.NewReader(cfg.Keystore), cfg.Passphrase, chainID)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("unlock keystore: %w", err)
		}
	}

	return New(eth, parsed, common.HexToAddress(cfg.ContractAddress), opts, log), nil
}

// New builds a client over an existing backend. opts may be nil for a
// read-only client.
func New(backend Backend, parsed abi.ABI, address common.Address, opts *bind.TransactOpts, log logging.Logger) *Client {
	return &Client{
		backend:  backend,
		abi:      parsed,
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		opts:     opts,
		log:      log.With("component", "evm", "contract", address.Hex()),
	}
}

// Signer is the sending address, empty for a read-only client.
func (c *Client) Signer() string {
	if c.opts == nil {
		return ""
	}
	return c.opts.From.Hex()
}

// Close releases the node connection when the backend holds one.
func (c *Client) Close() {
	if cl, ok := c.backend.(interface{ Close() }); ok {
		cl.Close()
	}
}

func (c *Client) method(fn string) (abi.Method, error) {
	m, ok := c.abi.Methods[fn]
	if !ok {
		return abi.Method{}, fmt.Errorf("%s: %w", fn, ledger.ErrUnknownFunction)
	}
	return m, nil
}

func (c *Client) pack(call ledger.Call) (abi.Method, []any, []byte, error) {
	m, err := c.method(call.Function)
	if err != nil {
		return m, nil, nil, err
	}
	args, err := coerceArgs(m.Inputs, call.Args)
	if err != nil {
		return m, nil, nil, fmt.Errorf("%s: %w", call.Function, err)
	}
	data, err := c.abi.Pack(call.Function, args...)
	if err != nil {
		return m, nil, nil, fmt.Errorf("%s: pack: %v: %w", call.Function, err, ledger.ErrBadArguments)
	}
	return m, args, data, nil
}

func (c *Client) callMsg(data []byte) ethereum.CallMsg {
	msg := ethereum.CallMsg{To: &c.address, Data: data}
	if c.opts != nil {
		msg.From = c.opts.From
	}
	return msg
}

func (c *Client) Read(ctx context.Context, call ledger.Call) (any, error) {
	m, _, data, err := c.pack(call)
	if err != nil {
		return nil, err
	}
	out, err := c.backend.CallContract(ctx, c.callMsg(data), nil)
	if err != nil {
		return nil, c.callError(call.Function, err)
	}
	vals, err := m.Outputs.Unpack(out)
	if err != nil {
		return nil, fmt.Errorf("%s: unpack: %w", call.Function, err)
	}
	return decodeOutputs(m.Outputs, vals), nil
}

// Simulate runs the write as an eth_call from the signer.
func (c *Client) Simulate(ctx context.Context, call ledger.Call) error {
	if c.opts == nil {
		return ledger.ErrReadOnly
	}
	_, _, data, err := c.pack(call)
	if err != nil {
		return err
	}
	if _, err := c.backend.CallContract(ctx, c.callMsg(data), nil); err != nil {
		return c.callError(call.Function, err)
	}
	return nil
}

func (c *Client) Write(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	if c.opts == nil {
		return ledger.TxResult{}, ledger.ErrReadOnly
	}
	_, args, _, err := c.pack(call)
	if err != nil {
		return ledger.TxResult{}, err
	}

	opts := *c.opts
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, call.Function, args...)
	if err != nil {
		return ledger.TxResult{}, c.callError(call.Function, err)
	}
	c.log.Info(ctx, "tx sent", "function", call.Function, "tx", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return ledger.TxResult{}, fmt.Errorf("%s: wait mined: %w", call.Function, err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return ledger.TxResult{}, &ledger.RevertError{Function: call.Function}
	}
	res := ledger.TxResult{Hash: tx.Hash().Hex(), Block: receipt.BlockNumber.Uint64()}
	c.log.Info(ctx, "tx mined", "function", call.Function, "tx", res.Hash, "block", res.Block)
	return res, nil
}

func (c *Client) SimulateThenWrite(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	if err := c.Simulate(ctx, call); err != nil {
		return ledger.TxResult{}, err
	}
	return c.Write(ctx, call)
}

// callError turns a node error into a RevertError when it carries revert
// data, decoding Error(string) and the ABI's custom errors.
func (c *Client) callError(fn string, err error) error {
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if data, derr := hexutil.Decode(s); derr == nil {
				return &ledger.RevertError{Function: fn, Reason: c.revertReason(data)}
			}
		}
	}
	msg := err.Error()
	if i := strings.Index(msg, "execution reverted"); i >= 0 {
		reason := strings.TrimPrefix(msg[i+len("execution reverted"):], ":")
		return &ledger.RevertError{Function: fn, Reason: strings.TrimSpace(reason)}
	}
	return fmt.Errorf("%s: %w", fn, err)
}

func (c *Client) revertReason(data []byte) string {
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason
	}
	if len(data) < 4 {
		return ""
	}
	for name, e := range c.abi.Errors {
		if bytes.Equal(e.ID[:4], data[:4]) {
			return name
		}
	}
	return ""
}
