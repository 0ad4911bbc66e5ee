package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/scout/internal/chain/rpc"
	"github.com/mrz1836/scout/internal/config"
	scouterr "github.com/mrz1836/scout/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify Scout configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.scout/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.

Example:
  scout config init
  scout config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration, after environment overrides.
Credentials embedded in RPC URLs are masked.

Example:
  scout config show
  scout config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configPathCmd prints the configuration file location.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outln(cmd.OutOrStdout(), config.Path(cfg.Home))
		return nil
	},
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree, using the
same keys as the YAML file.

Examples:
  scout config get network.rpc
  scout config get search.route_prefix
  scout config get avatar`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree. List values
take a comma-separated value. The configuration file is validated and
updated immediately.

Examples:
  scout config set network.rpc https://mainnet.infura.io/v3/YOUR_KEY
  scout config set network.fallback_rpcs https://rpc.ankr.com/eth,https://1rpc.io/eth
  scout config set search.settle_delay_ms 0`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// configCheckCmd validates the configuration and queries the endpoint.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and test the RPC endpoint",
	Long: `Validate the configuration, then ask the configured RPC endpoint for its
chain ID and compare it with network.chain_id.

Example:
  scout config check`,
	Args: cobra.NoArgs,
	RunE: runConfigCheck,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return scouterr.WithSuggestion(
			scouterr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - network.rpc: Your Ethereum RPC endpoint")
	outln(w, "  - search.route_prefix: Explorer route prefix (default /explorer/)")
	outln(w, "  - search.settle_delay_ms: Delay before loading ends on the current page")
	outln(w, "  - output.default_format: Output format (text/json)")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	tree, err := configTree(maskedConfig(cfg))
	if err != nil {
		return err
	}

	if formatter.IsJSON() {
		var v any
		if err := tree.Decode(&v); err != nil {
			return err
		}
		return formatter.Print(v)
	}

	data, err := yaml.Marshal(tree)
	if err != nil {
		return err
	}
	return formatter.Printf("%s", data)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := getConfigValue(cfg, args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, value := args[0], args[1]

	configPath := config.Path(cfg.Home)
	current, err := config.Load(configPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		current = config.Defaults()
		current.Home = cfg.Home
	default:
		return err
	}

	updated, err := setConfigValue(current, path, value)
	if err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := config.Save(updated, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", path, value)
	return nil
}

// chainCheck is the result of probing the configured endpoint.
type chainCheck struct {
	RPC      string `json:"rpc"`
	ChainID  int64  `json:"chain_id"`
	Expected int    `json:"expected_chain_id"`
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := rpc.NewClient(cfg.Network.RPC, rpc.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, cfg.RequestTimeout())
	defer cancel()

	id, err := client.ChainID(ctx)
	if err != nil {
		return scouterr.WithSuggestion(
			scouterr.WithCause(scouterr.ErrNetworkError, err),
			"check network.rpc or try another endpoint",
		)
	}

	result := chainCheck{
		RPC:      config.MaskURL(cfg.Network.RPC),
		ChainID:  id.Int64(),
		Expected: cfg.Network.ChainID,
	}
	if cfg.Network.ChainID != 0 && result.ChainID != int64(cfg.Network.ChainID) {
		return scouterr.WithSuggestion(
			scouterr.WithDetails(scouterr.ErrConfigInvalid, map[string]string{
				"field":    "network.chain_id",
				"expected": fmt.Sprint(cfg.Network.ChainID),
				"actual":   id.String(),
			}),
			"point network.rpc at the right network or update network.chain_id",
		)
	}

	if formatter.IsJSON() {
		return formatter.Print(result)
	}
	out(cmd.OutOrStdout(), "Configuration OK: %s reports chain ID %d\n", result.RPC, result.ChainID)
	return nil
}

// maskedConfig returns a copy of c with credentials stripped from RPC URLs.
func maskedConfig(c *config.Config) *config.Config {
	masked := *c
	masked.Network.RPC = config.MaskURL(c.Network.RPC)
	masked.Network.FallbackRPCs = make([]string, len(c.Network.FallbackRPCs))
	for i, u := range c.Network.FallbackRPCs {
		masked.Network.FallbackRPCs[i] = config.MaskURL(u)
	}
	return &masked
}

// configTree returns the YAML document node for c.
func configTree(c *config.Config) (*yaml.Node, error) {
	var doc yaml.Node
	if err := doc.Encode(c); err != nil {
		return nil, err
	}
	return &doc, nil
}

// findConfigNode walks a dotted path of YAML keys.
func findConfigNode(root *yaml.Node, path string) (*yaml.Node, error) {
	node := root
	for _, key := range strings.Split(path, ".") {
		if node.Kind != yaml.MappingNode {
			return nil, unknownConfigKey(path)
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil, unknownConfigKey(path)
		}
		node = next
	}
	return node, nil
}

func unknownConfigKey(path string) error {
	return scouterr.WithSuggestion(
		scouterr.WithDetails(scouterr.ErrNotFound, map[string]string{"key": path}),
		"run 'scout config show' to list available keys",
	)
}

// getConfigValue retrieves a value from the config using dot notation.
// Sections are returned as YAML.
func getConfigValue(c *config.Config, path string) (string, error) {
	root, err := configTree(c)
	if err != nil {
		return "", err
	}
	node, err := findConfigNode(root, path)
	if err != nil {
		return "", err
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.SequenceNode:
		values := make([]string, len(node.Content))
		for i, item := range node.Content {
			values[i] = item.Value
		}
		return strings.Join(values, ","), nil
	default:
		data, err := yaml.Marshal(node)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
}

// setConfigValue returns a copy of c with the value at path replaced.
func setConfigValue(c *config.Config, path, value string) (*config.Config, error) {
	root, err := configTree(c)
	if err != nil {
		return nil, err
	}
	node, err := findConfigNode(root, path)
	if err != nil {
		return nil, err
	}

	switch node.Kind {
	case yaml.ScalarNode:
		node.Value = value
		node.Tag = ""
		node.Style = 0
	case yaml.SequenceNode:
		node.Content = nil
		node.Style = 0
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item})
			}
		}
	default:
		return nil, scouterr.WithDetails(scouterr.ErrInvalidInput, map[string]string{
			"key":    path,
			"reason": "is a section, set one of its keys instead",
		})
	}

	updated := &config.Config{}
	if err := root.Decode(updated); err != nil {
		return nil, scouterr.WithDetails(scouterr.WithCause(scouterr.ErrInvalidInput, err), map[string]string{
			"key":   path,
			"value": value,
		})
	}
	return updated, nil
}
