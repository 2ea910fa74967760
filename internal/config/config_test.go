package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SPBU_HOME", dir)
	return dir
}

func TestLoadWritesDefaults(t *testing.T) {
	dir := setHome(t)

	cfg, err := LoadFile(filepath.Join(dir, "config.toml"), "")
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, cfg.Ledger.Mode)
	assert.Equal(t, 10, cfg.UI.PageSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.RedirectDelay())
	assert.Equal(t, filepath.Join(dir, "db", "devnet.sqlite"), cfg.Devnet.DBPath)

	assert.FileExists(t, filepath.Join(dir, "config.toml"))
	assert.DirExists(t, filepath.Join(dir, "db"))

	again, err := LoadFile(filepath.Join(dir, "config.toml"), "")
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadReadsFile(t *testing.T) {
	dir := setHome(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[ledger]
mode = "evm"
rpc_url = "http://localhost:8545"
contract_address = "0x52908400098527886E0F7030069857D2E4169EE7"
abi_path = "~/diamond.json"
chain_id = 31337

[ui]
page_size = 20
`), 0644))

	cfg, err := LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, ModeEVM, cfg.Ledger.Mode)
	assert.Equal(t, int64(31337), cfg.Ledger.ChainID)
	assert.Equal(t, 20, cfg.UI.PageSize)
	assert.Equal(t, 1500, cfg.UI.RedirectDelayMS, "unset keys keep defaults")
	assert.NotContains(t, cfg.Ledger.ABIPath, "~")
}

func TestEnvOverrides(t *testing.T) {
	dir := setHome(t)
	t.Setenv("SPBU_PAGE_SIZE", "50")
	t.Setenv("SPBU_LEDGER_MODE", "devnet")
	t.Setenv("SPBU_DEVNET_URL", "http://devnet:9000")

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SPBU_LOG_LEVEL=debug\nSPBU_PAGE_SIZE=5\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SPBU_LOG_LEVEL") })

	cfg, err := LoadFile(filepath.Join(dir, "config.toml"), envFile)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.UI.PageSize, "process env wins over .env")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ModeDevnet, cfg.Ledger.Mode)
	assert.Equal(t, "http://devnet:9000", cfg.Ledger.DevnetURL)
}

func TestMissingEnvFileIsFine(t *testing.T) {
	dir := setHome(t)
	_, err := LoadFile(filepath.Join(dir, "config.toml"), filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	setHome(t)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown mode", func(c *Config) { c.Ledger.Mode = "mainnet" }, "ledger.mode"},
		{"page size", func(c *Config) { c.UI.PageSize = 15 }, "ui.page_size"},
		{"evm needs rpc", func(c *Config) { c.Ledger.Mode = ModeEVM }, "ledger.rpc_url"},
		{"bad address", func(c *Config) { c.Ledger.ContractAddress = "0x12" }, "contract_address"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBadEnvNumber(t *testing.T) {
	dir := setHome(t)
	t.Setenv("SPBU_CHAIN_ID", "abc")
	_, err := LoadFile(filepath.Join(dir, "config.toml"), "")
	assert.ErrorContains(t, err, "SPBU_CHAIN_ID")
}
