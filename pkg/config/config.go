package config

// Package config binds the node binary's flags to their matching
// environment variables via viper, in the teacher's viper.AutomaticEnv /
// Unmarshal loading style (the original pkg/config/config.go), generalized
// from a YAML-file config to a flag-first one: spec.md §6 requires every
// node flag to have a matching environment variable, which viper.BindEnv
// plus cobra pflags gives directly without a config file on disk.

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"yac-network/pkg/utils"
)

// NodeConfig is the unified configuration for the node binary, mirroring
// spec.md §6's flag list one field per flag.
type NodeConfig struct {
	PeerHost      string `mapstructure:"peer_host"`
	PeerPort      int    `mapstructure:"peer_port"`
	ClientAPIHost string `mapstructure:"client_api_host"`
	ClientAPIPort int    `mapstructure:"client_api_port"`

	PublicKeyPath  string `mapstructure:"public_key_path"`
	PrivateKeyPath string `mapstructure:"private_key_path"`

	PostgresHost     string `mapstructure:"pg_host"`
	PostgresPort     int    `mapstructure:"pg_port"`
	PostgresDatabase string `mapstructure:"pg_database"`
	PostgresUsername string `mapstructure:"pg_username"`
	PostgresPassword string `mapstructure:"pg_password"`

	RedisHost string `mapstructure:"redis_host"`
	RedisPort int    `mapstructure:"redis_port"`

	BlocksPath string `mapstructure:"blocks_path"`

	LoadDelayMS     int `mapstructure:"load_delay_ms"`
	VoteDelayMS     int `mapstructure:"vote_delay_ms"`
	ProposalDelayMS int `mapstructure:"proposal_delay_ms"`
	ProposalSize    int `mapstructure:"proposal_size"`
}

// envPrefix namespaces every bound environment variable, e.g. peer-host
// binds to YAC_PEER_HOST.
const envPrefix = "YAC"

// flagSpec describes one bound flag: its name, default, usage string, and
// whether it carries an inclusive [min,max] bound checked by Validate.
type flagSpec struct {
	name     string
	def      interface{}
	usage    string
	hasBound bool
	min, max int
}

var flagSpecs = []flagSpec{
	{name: "peer-host", def: "0.0.0.0", usage: "address the peer-to-peer listener binds to"},
	{name: "peer-port", def: 10001, usage: "port the peer-to-peer listener binds to"},
	{name: "client-api-host", def: "0.0.0.0", usage: "address the client-facing API binds to"},
	{name: "client-api-port", def: 50051, usage: "port the client-facing API binds to"},
	{name: "public-key-path", def: "./node.pub", usage: "path to this node's Ed25519 public key"},
	{name: "private-key-path", def: "./node.priv", usage: "path to this node's Ed25519 private key"},
	{name: "pg-host", def: "127.0.0.1", usage: "PostgreSQL host"},
	{name: "pg-port", def: 5432, usage: "PostgreSQL port"},
	{name: "pg-database", def: "yac", usage: "PostgreSQL database name"},
	{name: "pg-username", def: "yac", usage: "PostgreSQL username"},
	{name: "pg-password", def: "", usage: "PostgreSQL password"},
	{name: "redis-host", def: "127.0.0.1", usage: "Redis host"},
	{name: "redis-port", def: 6379, usage: "Redis port"},
	{name: "blocks-path", def: "./blocks", usage: "path to the block-store directory"},
	{name: "load-delay-ms", def: 5000, usage: "delay between ledger load attempts, in ms", hasBound: true, min: 1, max: 100000},
	{name: "vote-delay-ms", def: 3000, usage: "YAC round timeout before leader rotation, in ms", hasBound: true, min: 1, max: 100000},
	{name: "proposal-delay-ms", def: 3000, usage: "delay between proposal attempts, in ms", hasBound: true, min: 1, max: 100000},
	{name: "proposal-size", def: 100, usage: "max transactions per proposal", hasBound: true, min: 1, max: 100000},
}

// BindFlags registers every node flag on cmd's flag set and binds each to
// its YAC_-prefixed environment variable via viper.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.Flags()
	for _, spec := range flagSpecs {
		switch def := spec.def.(type) {
		case string:
			flags.String(spec.name, def, spec.usage)
		case int:
			flags.Int(spec.name, def, spec.usage)
		default:
			return fmt.Errorf("config: unsupported default type for flag %s", spec.name)
		}
		if err := v.BindPFlag(mapstructureKey(spec.name), flags.Lookup(spec.name)); err != nil {
			return utils.Wrap(err, fmt.Sprintf("bind flag %s", spec.name))
		}
		envVar := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(spec.name, "-", "_"))
		if err := v.BindEnv(mapstructureKey(spec.name), envVar); err != nil {
			return utils.Wrap(err, fmt.Sprintf("bind env for flag %s", spec.name))
		}
	}
	return nil
}

// mapstructureKey converts a dashed flag name to its mapstructure tag, e.g.
// "peer-host" -> "peer_host".
func mapstructureKey(flagName string) string {
	return strings.ReplaceAll(flagName, "-", "_")
}

// Load unmarshals v's bound values into a NodeConfig and validates every
// bounded field.
func Load(v *viper.Viper) (*NodeConfig, error) {
	var cfg NodeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, utils.Wrap(err, "unmarshal node config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every flag that carries an inclusive [min,max] bound per
// spec.md §6.
func (c *NodeConfig) Validate() error {
	bounds := map[string]int{
		"load_delay_ms":     c.LoadDelayMS,
		"vote_delay_ms":     c.VoteDelayMS,
		"proposal_delay_ms": c.ProposalDelayMS,
		"proposal_size":     c.ProposalSize,
	}
	for _, spec := range flagSpecs {
		if !spec.hasBound {
			continue
		}
		key := mapstructureKey(spec.name)
		v, ok := bounds[key]
		if !ok {
			continue
		}
		if v < spec.min || v > spec.max {
			return fmt.Errorf("config: %s must be between %d and %d, got %d", key, spec.min, spec.max, v)
		}
	}
	return nil
}
