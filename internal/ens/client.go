// Package ens resolves Ethereum Name Service records over JSON-RPC:
// forward (name → address), reverse (address → name) and avatar text records.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/scout/internal/chain/rpc"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

// resolverABI covers the registry and resolver methods the client calls.
const resolverABI = `[
	{"type":"function","name":"resolver","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"addr","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"name","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"text","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"key","type":"string"}],"outputs":[{"name":"","type":"string"}]}
]`

// avatarKey is the text record holding the avatar URI.
const avatarKey = "avatar"

// Caller executes read-only contract calls.
type Caller interface {
	EthCall(ctx context.Context, msg rpc.CallMsg) ([]byte, error)
}

// Options configures a Client.
type Options struct {
	// Registry overrides the ENS registry address.
	Registry string
	// VerifyReverse requires a reverse record to forward-resolve back to the
	// queried address before it is trusted.
	VerifyReverse bool
	// Gateways converts avatar records into URLs.
	Gateways Gateways
}

// Client resolves ENS records.
type Client struct {
	caller        Caller
	registry      common.Address
	verifyReverse bool
	gateways      Gateways
	abi           abi.ABI
}

// NewClient creates an ENS client on top of a contract caller.
func NewClient(caller Caller, opts Options) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(resolverABI))
	if err != nil {
		return nil, fmt.Errorf("parsing resolver ABI: %w", err)
	}

	registry := opts.Registry
	if registry == "" {
		registry = DefaultRegistry
	}
	if !common.IsHexAddress(registry) {
		return nil, scouterr.WithDetails(scouterr.ErrInvalidAddress, map[string]string{
			"registry": registry,
		})
	}

	gateways := opts.Gateways
	if gateways.IPFS == "" || gateways.Arweave == "" {
		defaults := DefaultGateways()
		if gateways.IPFS == "" {
			gateways.IPFS = defaults.IPFS
		}
		if gateways.Arweave == "" {
			gateways.Arweave = defaults.Arweave
		}
	}

	return &Client{
		caller:        caller,
		registry:      common.HexToAddress(registry),
		verifyReverse: opts.VerifyReverse,
		gateways:      gateways,
		abi:           parsed,
	}, nil
}

// DefaultRegistry is the ENS registry deployment shared by mainnet and testnets.
const DefaultRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// ForwardResolve returns the checksummed address a name points to, or "" when
// the name has no resolver or no address record.
func (c *Client) ForwardResolve(ctx context.Context, name string) (string, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return "", err
	}

	addr, err := c.resolveAddr(ctx, Namehash(normalized))
	if err != nil {
		return "", scouterr.WithDetails(err, map[string]string{"name": normalized})
	}
	if addr == (common.Address{}) {
		return "", nil
	}
	return addr.Hex(), nil
}

// ReverseResolve returns the primary name of an address, or "" when it has none.
func (c *Client) ReverseResolve(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", scouterr.WithDetails(scouterr.ErrInvalidAddress, map[string]string{"address": address})
	}

	node := Namehash(ReverseName(address))
	resolver, err := c.resolverOf(ctx, node)
	if err != nil || resolver == (common.Address{}) {
		return "", err
	}

	var name string
	if err := c.call(ctx, resolver, "name", &name, node); err != nil {
		return "", err
	}
	if name == "" {
		return "", nil
	}

	if c.verifyReverse {
		forward, err := c.ForwardResolve(ctx, name)
		if err != nil {
			if errors.Is(err, scouterr.ErrInvalidName) {
				return "", nil
			}
			return "", err
		}
		if !strings.EqualFold(forward, common.HexToAddress(address).Hex()) {
			return "", nil
		}
	}

	return name, nil
}

// ResolveAvatar returns a displayable avatar URI for a name, or "" when none is set.
func (c *Client) ResolveAvatar(ctx context.Context, name string) (string, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return "", err
	}

	node := Namehash(normalized)
	resolver, err := c.resolverOf(ctx, node)
	if err != nil || resolver == (common.Address{}) {
		return "", err
	}

	var record string
	if err := c.call(ctx, resolver, "text", &record, node, avatarKey); err != nil {
		return "", err
	}
	return c.gateways.AvatarURL(record), nil
}

func (c *Client) resolveAddr(ctx context.Context, node [32]byte) (common.Address, error) {
	resolver, err := c.resolverOf(ctx, node)
	if err != nil || resolver == (common.Address{}) {
		return common.Address{}, err
	}

	var addr common.Address
	if err := c.call(ctx, resolver, "addr", &addr, node); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

func (c *Client) resolverOf(ctx context.Context, node [32]byte) (common.Address, error) {
	var resolver common.Address
	if err := c.call(ctx, c.registry, "resolver", &resolver, node); err != nil {
		return common.Address{}, err
	}
	return resolver, nil
}

// call packs, executes and unpacks a single-output view method. A revert or an
// empty return is treated as "record not set" and leaves out at its zero value.
func (c *Client) call(ctx context.Context, to common.Address, method string, out any, args ...any) error {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("packing %s: %w", method, err)
	}

	result, err := c.caller.EthCall(ctx, rpc.CallMsg{To: to, Data: data})
	if err != nil {
		if rpc.IsExecutionReverted(err) {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return scouterr.WithDetails(scouterr.WithCause(scouterr.ErrResolverUnavailable, err), map[string]string{
			"method": method,
		})
	}
	if len(result) == 0 {
		return nil
	}

	values, err := c.abi.Unpack(method, result)
	if err != nil || len(values) == 0 {
		// Contracts without the method return garbage rather than reverting.
		return nil //nolint:nilerr // undecodable output means the record is absent
	}

	switch dst := out.(type) {
	case *common.Address:
		if v, ok := values[0].(common.Address); ok {
			*dst = v
		}
	case *string:
		if v, ok := values[0].(string); ok {
			*dst = v
		}
	}
	return nil
}
