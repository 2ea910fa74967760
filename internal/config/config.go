package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Ledger backends.
const (
	ModeLocal  = "local"  // in-process devnet on Devnet.DBPath
	ModeDevnet = "devnet" // devnet served over HTTP at Ledger.DevnetURL
	ModeEVM    = "evm"    // deployed Diamond over JSON-RPC
)

type Config struct {
	Ledger LedgerConfig `toml:"ledger"`
	UI     UIConfig     `toml:"ui"`
	Devnet DevnetConfig `toml:"devnet"`
	Log    LogConfig    `toml:"log"`
}

type LedgerConfig struct {
	Mode            string `toml:"mode" validate:"oneof=local devnet evm"`
	DevnetURL       string `toml:"devnet_url" validate:"required_if=Mode devnet"`
	RPCURL          string `toml:"rpc_url" validate:"required_if=Mode evm"`
	ContractAddress string `toml:"contract_address" validate:"required_if=Mode evm"`
	ABIPath         string `toml:"abi_path" validate:"required_if=Mode evm"`
	KeystorePath    string `toml:"keystore_path"`
	ChainID         int64  `toml:"chain_id" validate:"gte=0"`
}

type UIConfig struct {
	PageSize        int `toml:"page_size" validate:"oneof=5 10 20 50 100"`
	RedirectDelayMS int `toml:"redirect_delay_ms" validate:"gte=0"`
}

type DevnetConfig struct {
	Addr   string `toml:"addr" validate:"required"`
	DBPath string `toml:"db_path" validate:"required"`
}

type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

var validate = newValidator()

// newValidator reports fields by their TOML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
	})
	return v
}

func DefaultConfig() *Config {
	dir, _ := AppDir()
	return &Config{
		Ledger: LedgerConfig{
			Mode:      ModeLocal,
			DevnetURL: "http://127.0.0.1:8545",
		},
		UI: UIConfig{
			PageSize:        10,
			RedirectDelayMS: 1500,
		},
		Devnet: DevnetConfig{
			Addr:   "127.0.0.1:8545",
			DBPath: filepath.Join(dir, "db", "devnet.sqlite"),
		},
		Log: LogConfig{
			Path:  filepath.Join(dir, "spbuadmin.log"),
			Level: "info",
		},
	}
}

// AppDir is ~/.spbuadmin, or $SPBU_HOME when set.
func AppDir() (string, error) {
	if dir := os.Getenv("SPBU_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".spbuadmin"), nil
}

func ConfigPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func EnsureDirectories() error {
	dir, err := AppDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(dir, "db"), 0755)
}

// Load reads the config file (writing defaults on first run), then .env in
// the working directory, then SPBU_* environment variables.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath, ".env")
}

func LoadFile(configPath, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := SaveTo(configPath, cfg); err != nil {
			return nil, err
		}
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Ledger.ABIPath = expandPath(cfg.Ledger.ABIPath)
	cfg.Ledger.KeystorePath = expandPath(cfg.Ledger.KeystorePath)
	cfg.Devnet.DBPath = expandPath(cfg.Devnet.DBPath)
	cfg.Log.Path = expandPath(cfg.Log.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SPBU_LEDGER_MODE":      &c.Ledger.Mode,
		"SPBU_DEVNET_URL":       &c.Ledger.DevnetURL,
		"SPBU_RPC_URL":          &c.Ledger.RPCURL,
		"SPBU_CONTRACT_ADDRESS": &c.Ledger.ContractAddress,
		"SPBU_ABI_PATH":         &c.Ledger.ABIPath,
		"SPBU_KEYSTORE_PATH":    &c.Ledger.KeystorePath,
		"SPBU_DEVNET_ADDR":      &c.Devnet.Addr,
		"SPBU_DEVNET_DB":        &c.Devnet.DBPath,
		"SPBU_LOG_PATH":         &c.Log.Path,
		"SPBU_LOG_LEVEL":        &c.Log.Level,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("SPBU_CHAIN_ID"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SPBU_CHAIN_ID: %w", err)
		}
		c.Ledger.ChainID = n
	}
	if v, ok := os.LookupEnv("SPBU_PAGE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPBU_PAGE_SIZE: %w", err)
		}
		c.UI.PageSize = n
	}
	return nil
}

// Validate reports the first invalid setting by its TOML path.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			path := strings.TrimPrefix(fe.Namespace(), "Config.")
			return fmt.Errorf("invalid config: %s: failed %q (value %v)", path, fe.Tag(), fe.Value())
		}
		return err
	}
	if err := validate.Var(c.Ledger.ContractAddress, "omitempty,eth_addr"); err != nil {
		return fmt.Errorf("invalid config: ledger.contract_address %q is not an address", c.Ledger.ContractAddress)
	}
	return nil
}

func (c *Config) RedirectDelay() time.Duration {
	return time.Duration(c.UI.RedirectDelayMS) * time.Millisecond
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(configPath, cfg)
}

func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
