package config_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/tally/config"
	"github.com/jrife/tally/storage/kv"
)

func TestDefault(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("expected defaults to be valid, got %s", err.Error())
	}

	loaded, err := config.Load("")

	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}

	if diff := cmp.Diff(config.Default(), loaded); diff != "" {
		t.Errorf(diff)
	}
}

func TestParse(t *testing.T) {
	c := config.Default()
	data := `
storage:
  driver: memory
  max_post_size: 100
auth:
  allow_anonymous: true
  header: x-user
voting:
  opposite_vote: flip
listen:
  grpc: ""
  http: "127.0.0.1:9090"
log:
  level: debug
  development: true
`

	if err := config.Parse([]byte(data), &c); err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}

	expected := config.Default()
	expected.Storage.Driver = "memory"
	expected.Storage.Options = nil
	expected.Storage.MaxPostSize = 100
	expected.Auth.AllowAnonymous = true
	expected.Auth.Header = "x-user"
	expected.Voting.OppositeVote = "flip"
	expected.Listen.GRPC = ""
	expected.Listen.HTTP = "127.0.0.1:9090"
	expected.Log.Level = "debug"
	expected.Log.Development = true

	if diff := cmp.Diff(expected, c); diff != "" {
		t.Errorf(diff)
	}
}

func TestValidate(t *testing.T) {
	testCases := map[string]string{
		"unknown-driver":       "storage: {driver: etcd}",
		"zero-post-size":       "storage: {max_post_size: 0}",
		"negative-ledger-size": "storage: {max_ledger_size: -1}",
		"unknown-identity":     "auth: {identity: oauth}",
		"tls-identity-no-ca":   "auth: {identity: tls}",
		"unknown-policy":       "voting: {opposite_vote: ignore}",
		"no-listeners":         "listen: {grpc: \"\", http: \"\"}",
		"cert-without-key":     "listen: {tls: {cert: server.pem}}",
		"ca-without-cert":      "listen: {tls: {client_ca: ca.pem}}",
		"bad-log-level":        "log: {level: loud}",
	}

	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			c := config.Default()

			if err := config.Parse([]byte(data), &c); !errors.Is(err, config.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestParseUnknownField(t *testing.T) {
	c := config.Default()

	if err := config.Parse([]byte("storage: {drvier: memory}"), &c); err == nil {
		t.Errorf("expected an error for a misspelled field")
	}
}

const documentedConfig = `
storage:
  driver: bbolt
  options: {path: /var/lib/tally/tally.db}
  max_post_size: 1024
  max_ledger_size: 1048576
auth:
  allow_anonymous: false
  identity: header
  header: x-tally-principal
voting:
  opposite_vote: retract
listen:
  grpc: ":7070"
  http: ":8080"
  tls:
    cert: server.pem
    key: server-key.pem
    client_ca: ca.pem
log:
  level: info
  development: false
`

func TestStorageOptions(t *testing.T) {
	testCases := map[string]struct {
		data    string
		options kv.PluginOptions
	}{
		"documented-example": {
			data:    documentedConfig,
			options: kv.PluginOptions{"path": "/var/lib/tally/tally.db"},
		},
		"bbolt-default-path": {
			data:    "storage: {driver: bbolt}",
			options: kv.PluginOptions{"path": "tally.db"},
		},
		"bbolt-no-sync": {
			data:    "storage: {driver: bbolt, options: {no_sync: true}}",
			options: kv.PluginOptions{"path": "tally.db", "no_sync": true},
		},
		"sqlite-default-path": {
			data:    "storage: {driver: sqlite}",
			options: kv.PluginOptions{"path": "tally.sqlite"},
		},
		"sqlite-path": {
			data:    "storage: {driver: sqlite, options: {path: /tmp/tally.sqlite}}",
			options: kv.PluginOptions{"path": "/tmp/tally.sqlite"},
		},
		"postgres": {
			data:    "storage:\n  driver: postgres\n  options:\n    dsn: postgres://tally@localhost/tally\n    table: posts_kv\n",
			options: kv.PluginOptions{"dsn": "postgres://tally@localhost/tally", "table": "posts_kv"},
		},
		"memory": {
			data:    "storage: {driver: memory}",
			options: kv.PluginOptions{},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			c := config.Default()

			if err := config.Parse([]byte(testCase.data), &c); err != nil {
				t.Fatalf("expected no error, got %s", err.Error())
			}

			if diff := cmp.Diff(testCase.options, c.Storage.PluginOptions()); diff != "" {
				t.Errorf(diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "tally-config")

	if err != nil {
		t.Fatalf("could not create temp dir: %s", err.Error())
	}

	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tally.yaml")

	if err := ioutil.WriteFile(path, []byte("storage:\n  driver: sqlite\n  options: {path: /tmp/tally.sqlite}\n"), 0644); err != nil {
		t.Fatalf("could not write config file: %s", err.Error())
	}

	c, err := config.Load(path)

	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}

	if c.Storage.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", c.Storage.Driver)
	}

	if diff := cmp.Diff(kv.PluginOptions{"path": "/tmp/tally.sqlite"}, c.Storage.PluginOptions()); diff != "" {
		t.Errorf(diff)
	}

	documentedPath := filepath.Join(dir, "documented.yaml")

	if err := ioutil.WriteFile(documentedPath, []byte(documentedConfig), 0644); err != nil {
		t.Fatalf("could not write config file: %s", err.Error())
	}

	c, err = config.Load(documentedPath)

	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}

	expected := config.Default()
	expected.Storage.Options = map[string]interface{}{"path": "/var/lib/tally/tally.db"}
	expected.Listen.TLS = config.TLSConfig{Cert: "server.pem", Key: "server-key.pem", ClientCA: "ca.pem"}

	if diff := cmp.Diff(expected, c); diff != "" {
		t.Errorf(diff)
	}

	if _, err := config.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestLogger(t *testing.T) {
	logger, err := config.LogConfig{Level: "warn", Development: true}.Logger()

	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}

	if logger.Core().Enabled(-1) {
		t.Errorf("expected debug to be disabled at warn level")
	}
}

func TestTLSDisabled(t *testing.T) {
	tlsConfig, err := config.TLSConfig{}.Build()

	if err != nil {
		t.Fatalf("expected no error, got %s", err.Error())
	}

	if tlsConfig != nil {
		t.Errorf("expected nil tls config")
	}

	if _, err := (config.TLSConfig{Cert: "missing.pem", Key: "missing.key"}).Build(); err == nil {
		t.Errorf("expected an error for missing certificates")
	}
}
