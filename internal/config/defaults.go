package config

// DefaultETHRPCURL is the default Ethereum RPC endpoint.
// Uses PublicNode (Allnodes), a privacy-first provider that requires no API key.
const DefaultETHRPCURL = "https://ethereum-rpc.publicnode.com"

// DefaultENSRegistry is the ENS registry address on mainnet and most testnets.
const DefaultENSRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// DefaultETHFallbackRPCs are backup Ethereum RPC endpoints tried when the primary fails.
//
//nolint:gochecknoglobals // Configuration default constant, same pattern as DefaultETHRPCURL
var DefaultETHFallbackRPCs = []string{
	"https://rpc.ankr.com/eth",
	"https://1rpc.io/eth",
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.scout",
		Network: NetworkConfig{
			RPC:            DefaultETHRPCURL,
			FallbackRPCs:   DefaultETHFallbackRPCs,
			ChainID:        1,
			Registry:       DefaultENSRegistry,
			RequestsPerSec: 5,
			Burst:          10,
			RetryAttempts:  3,
			TimeoutSeconds: 15,
			VerifyReverse:  true,
		},
		Search: SearchConfig{
			RoutePrefix:          "/explorer/",
			SettleDelayMS:        300,
			LookupTimeoutSeconds: 0, // No timeout, a hung lookup keeps loading set
			ExternalExplorer:     "https://etherscan.io",
			Concurrency:          4,
		},
		Avatar: AvatarConfig{
			IPFSGateway:    "https://ipfs.io/ipfs/",
			ArweaveGateway: "https://arweave.net/",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 10,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.scout/scout.log",
		},
	}
}
