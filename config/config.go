// Package config loads the tally server configuration
// from a YAML file.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/plugins"
	"github.com/jrife/tally/tally/auth"
	"github.com/jrife/tally/tally/storage"
	"github.com/jrife/tally/tally/voting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

var (
	// ErrInvalid is wrapped by every validation error
	ErrInvalid = errors.New("invalid configuration")
)

// Config is the top level server configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Voting  VotingConfig  `yaml:"voting"`
	Listen  ListenConfig  `yaml:"listen"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects and configures the kv driver
type StorageConfig struct {
	Driver        string                 `yaml:"driver"`
	Options       map[string]interface{} `yaml:"options"`
	MaxPostSize   int                    `yaml:"max_post_size"`
	MaxLedgerSize int                    `yaml:"max_ledger_size"`
}

// AuthConfig configures the authorization guard
// and how callers are identified
type AuthConfig struct {
	AllowAnonymous bool   `yaml:"allow_anonymous"`
	Identity       string `yaml:"identity"`
	Header         string `yaml:"header"`
}

// VotingConfig configures the voting engine
type VotingConfig struct {
	OppositeVote string `yaml:"opposite_vote"`
}

// ListenConfig holds the frontend addresses. An
// empty address disables that frontend.
type ListenConfig struct {
	GRPC string    `yaml:"grpc"`
	HTTP string    `yaml:"http"`
	TLS  TLSConfig `yaml:"tls"`
}

// TLSConfig enables TLS on both frontends when
// Cert and Key are set. ClientCA turns on client
// certificate verification.
type TLSConfig struct {
	Cert     string `yaml:"cert"`
	Key      string `yaml:"key"`
	ClientCA string `yaml:"client_ca"`
}

// Enabled returns true if a certificate is configured
func (config TLSConfig) Enabled() bool {
	return config.Cert != "" || config.Key != ""
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	config := Config{
		Storage: StorageConfig{
			Driver:        "bbolt",
			MaxPostSize:   storage.DefaultMaxPostSize,
			MaxLedgerSize: storage.DefaultMaxLedgerSize,
		},
		Auth: AuthConfig{
			Identity: auth.ResolverHeader,
			Header:   auth.DefaultHeader,
		},
		Voting: VotingConfig{
			OppositeVote: voting.Retract.String(),
		},
		Listen: ListenConfig{
			GRPC: ":7070",
			HTTP: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
	config.Storage.applyDefaults()

	return config
}

// Load reads the file at path on top of the defaults
// and validates the result. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	config := Default()

	if path == "" {
		return config, config.Validate()
	}

	data, err := ioutil.ReadFile(path)

	if err != nil {
		return Config{}, fmt.Errorf("could not read config file %s: %w", path, err)
	}

	if err := Parse(data, &config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Parse decodes data into config, overwriting only the
// fields data sets, then validates config. Storage options
// are driver specific so data replaces them as a whole.
func Parse(data []byte, config *Config) error {
	config.Storage.Options = nil

	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return fmt.Errorf("could not parse config: %w", err)
	}

	config.Storage.applyDefaults()

	return config.Validate()
}

// Validate checks that every field holds a usable value
func (config Config) Validate() error {
	if plugins.Plugin(config.Storage.Driver) == nil {
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalid, config.Storage.Driver)
	}

	if config.Storage.MaxPostSize <= 0 {
		return fmt.Errorf("%w: storage.max_post_size must be positive", ErrInvalid)
	}

	if config.Storage.MaxLedgerSize <= 0 {
		return fmt.Errorf("%w: storage.max_ledger_size must be positive", ErrInvalid)
	}

	if _, err := auth.NewResolver(config.Auth.Identity, config.Auth.Header); err != nil {
		return fmt.Errorf("%w: auth.identity: %s", ErrInvalid, err.Error())
	}

	if config.Auth.Identity == auth.ResolverTLS && config.Listen.TLS.ClientCA == "" {
		return fmt.Errorf("%w: auth.identity %q requires listen.tls.client_ca", ErrInvalid, auth.ResolverTLS)
	}

	if _, err := voting.ParseOppositeVote(config.Voting.OppositeVote); err != nil {
		return fmt.Errorf("%w: voting.opposite_vote: %s", ErrInvalid, err.Error())
	}

	if config.Listen.GRPC == "" && config.Listen.HTTP == "" {
		return fmt.Errorf("%w: at least one of listen.grpc and listen.http must be set", ErrInvalid)
	}

	if config.Listen.TLS.Enabled() && (config.Listen.TLS.Cert == "" || config.Listen.TLS.Key == "") {
		return fmt.Errorf("%w: listen.tls needs both cert and key", ErrInvalid)
	}

	if config.Listen.TLS.ClientCA != "" && !config.Listen.TLS.Enabled() {
		return fmt.Errorf("%w: listen.tls.client_ca needs cert and key", ErrInvalid)
	}

	var level zapcore.Level

	if err := level.UnmarshalText([]byte(config.Log.Level)); err != nil {
		return fmt.Errorf("%w: log.level: %s", ErrInvalid, err.Error())
	}

	return nil
}

// defaultPaths holds the file used by file backed
// drivers when storage.options.path is not set
var defaultPaths = map[string]string{
	"bbolt":  "tally.db",
	"sqlite": "tally.sqlite",
}

func (config *StorageConfig) applyDefaults() {
	path, ok := defaultPaths[config.Driver]

	if !ok {
		return
	}

	if _, ok := config.Options["path"]; ok {
		return
	}

	if config.Options == nil {
		config.Options = map[string]interface{}{}
	}

	config.Options["path"] = path
}

// PluginOptions returns the storage options in the
// form kv plugins expect
func (config StorageConfig) PluginOptions() kv.PluginOptions {
	options := kv.PluginOptions{}

	for key, value := range config.Options {
		options[key] = value
	}

	return options
}

// Logger builds the zap logger described by config
func (config LogConfig) Logger() (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()

	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}

	if err := zapConfig.Level.UnmarshalText([]byte(config.Level)); err != nil {
		return nil, fmt.Errorf("could not parse log level: %w", err)
	}

	return zapConfig.Build()
}

// Build loads the certificates named by config. It
// returns nil if TLS is not enabled.
func (config TLSConfig) Build() (*tls.Config, error) {
	if !config.Enabled() {
		return nil, nil
	}

	certificate, err := tls.LoadX509KeyPair(config.Cert, config.Key)

	if err != nil {
		return nil, fmt.Errorf("could not load key pair: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{certificate},
		MinVersion:   tls.VersionTLS12,
	}

	if config.ClientCA == "" {
		return tlsConfig, nil
	}

	pem, err := ioutil.ReadFile(config.ClientCA)

	if err != nil {
		return nil, fmt.Errorf("could not read client ca %s: %w", config.ClientCA, err)
	}

	pool := x509.NewCertPool()

	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", config.ClientCA)
	}

	tlsConfig.ClientCAs = pool
	tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert

	return tlsConfig, nil
}
