package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/emilianohg/spbuadmin/internal/catalog"
	"github.com/emilianohg/spbuadmin/internal/config"
	"github.com/emilianohg/spbuadmin/internal/db"
	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/ledger/devnet"
	"github.com/emilianohg/spbuadmin/internal/ledger/evm"
	"github.com/emilianohg/spbuadmin/internal/ledger/httpledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
)

const passphraseEnv = "SPBU_KEYSTORE_PASSPHRASE"

// connection is an open ledger client plus what the dashboard shows about it.
type connection struct {
	client   ledger.Client
	endpoint string
	signer   string
	close    func()
}

// openLocalDevnet opens the sqlite devnet, migrating it on first use.
func openLocalDevnet(cfg *config.Config, log logging.Logger) (*devnet.Contract, func(), error) {
	database, err := db.OpenAndMigrate(cfg.Devnet.DBPath)
	if err != nil {
		return nil, nil, err
	}
	contract, err := devnet.New(database, catalog.Resources(), log)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return contract, func() { database.Close() }, nil
}

func openLedger(ctx context.Context, cfg *config.Config, log logging.Logger) (*connection, error) {
	switch cfg.Ledger.Mode {
	case config.ModeDevnet:
		c := httpledger.New(cfg.Ledger.DevnetURL, nil, log)
		if _, err := c.Ping(ctx); err != nil {
			return nil, fmt.Errorf("devnet at %s: %w", cfg.Ledger.DevnetURL, err)
		}
		return &connection{client: c, endpoint: cfg.Ledger.DevnetURL, signer: "devnet", close: func() {}}, nil

	case config.ModeEVM:
		ecfg := evm.Config{
			RPCURL:          cfg.Ledger.RPCURL,
			ContractAddress: cfg.Ledger.ContractAddress,
			ABIPath:         cfg.Ledger.ABIPath,
			ChainID:         cfg.Ledger.ChainID,
		}
		if cfg.Ledger.KeystorePath != "" {
			keystore, err := os.ReadFile(cfg.Ledger.KeystorePath)
			if err != nil {
				return nil, fmt.Errorf("read keystore: %w", err)
			}
			passphrase, err := readPassphrase()
			if err != nil {
				return nil, err
			}
			ecfg.Keystore = keystore
			ecfg.Passphrase = passphrase
		}
		c, err := evm.Dial(ctx, ecfg, log)
		if err != nil {
			return nil, err
		}
		return &connection{
			client:   c,
			endpoint: fmt.Sprintf("%s @ %s", cfg.Ledger.ContractAddress, cfg.Ledger.RPCURL),
			signer:   c.Signer(),
			close:    c.Close,
		}, nil
	}

	contract, closeDB, err := openLocalDevnet(cfg, log)
	if err != nil {
		return nil, err
	}
	return &connection{
		client:   contract,
		endpoint: "devnet lokal " + cfg.Devnet.DBPath,
		signer:   "devnet",
		close:    closeDB,
	}, nil
}

// readPassphrase takes the keystore passphrase from the environment, or
// prompts for it without echo.
func readPassphrase() (string, error) {
	if p, ok := os.LookupEnv(passphraseEnv); ok {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("keystore passphrase: set " + passphraseEnv + " or run in a terminal")
	}
	fmt.Fprint(os.Stderr, "Keystore passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
