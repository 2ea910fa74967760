package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/emilianohg/spbuadmin/internal/catalog"
	"github.com/emilianohg/spbuadmin/internal/config"
	"github.com/emilianohg/spbuadmin/internal/db"
	"github.com/emilianohg/spbuadmin/internal/ledger/devnet"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/resource"
	"github.com/emilianohg/spbuadmin/internal/tui"
	"github.com/emilianohg/spbuadmin/internal/tui/screens"
)

var rootCmd = &cobra.Command{
	Use:   "spbuadmin",
	Short: "Admin dashboard for SPBU fuel station records",
	Long: `spbuadmin manages SPBU master data, operations and procurement records
kept by the SPBU Diamond contract, or by a local devnet that mimics it.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// The TUI owns the terminal, so logs go to a file.
		log, closer, err := logging.OpenFile(cfg.Log.Path, cfg.Log.Level)
		if err != nil {
			return err
		}
		defer closer.Close()

		conn, err := openLedger(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer conn.close()

		registry, err := catalog.New()
		if err != nil {
			return err
		}

		log.Info(cmd.Context(), "starting dashboard", "mode", cfg.Ledger.Mode, "endpoint", conn.endpoint)
		return tui.Run(screens.Deps{
			Client:        conn.client,
			Registry:      registry,
			Log:           log,
			PageSize:      cfg.UI.PageSize,
			RedirectDelay: cfg.RedirectDelay(),
			Endpoint:      conn.endpoint,
			Signer:        conn.signer,
		})
	},
}

var devnetCmd = &cobra.Command{
	Use:   "devnet",
	Short: "Run and manage the local devnet ledger",
}

var devnetServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the devnet ledger over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Devnet.Addr = addr
		}
		log := logging.New(os.Stderr, cfg.Log.Level)

		contract, closeDB, err := openLocalDevnet(cfg, log)
		if err != nil {
			return err
		}
		defer closeDB()

		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			n, err := contract.Seed(cmd.Context())
			if err != nil {
				return err
			}
			log.Info(cmd.Context(), "seeded devnet", "writes", n)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return devnet.Serve(ctx, cfg.Devnet.Addr, contract, log)
	},
}

var devnetMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending devnet database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Devnet.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		status, err := db.GetMigrationStatus(database)
		if err != nil {
			return err
		}
		if status.Dirty {
			return fmt.Errorf("database is dirty at version %d, fix it manually", status.CurrentVersion)
		}
		if !status.Pending {
			fmt.Printf("Database is up to date (version %d).\n", status.CurrentVersion)
			return nil
		}
		if err := db.RunMigrations(database); err != nil {
			return err
		}
		fmt.Printf("Migrated %d -> %d.\n", status.CurrentVersion, status.LatestVersion)
		return nil
	},
}

var devnetSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty devnet with sample master data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		contract, closeDB, err := openLocalDevnet(cfg, logging.New(os.Stderr, cfg.Log.Level))
		if err != nil {
			return err
		}
		defer closeDB()

		n, err := contract.Seed(cmd.Context())
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Devnet already has data, nothing seeded.")
			return nil
		}
		fmt.Printf("Seeded %d records.\n", n)
		return nil
	},
}

var devnetTxsCmd = &cobra.Command{
	Use:   "txs",
	Short: "Show the latest devnet transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		contract, closeDB, err := openLocalDevnet(cfg, logging.Discard())
		if err != nil {
			return err
		}
		defer closeDB()

		limit, _ := cmd.Flags().GetInt("limit")
		txs, err := contract.Transactions(cmd.Context(), limit)
		if err != nil {
			return err
		}
		t := newTable("Blok", "Fungsi", "Hash", "Waktu")
		for _, tx := range txs {
			hash := tx.Hash
			if len(hash) > 18 {
				hash = hash[:18] + "…"
			}
			t.Row(
				humanize.Comma(int64(tx.Block)),
				tx.Function,
				hash,
				humanize.Time(time.Unix(tx.CreatedAt, 0)),
			)
		}
		fmt.Println(t)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "Print one page of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		registry, err := catalog.New()
		if err != nil {
			return err
		}
		res, ok := registry.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown resource %q, see 'spbuadmin resources'", args[0])
		}

		log := logging.New(os.Stderr, cfg.Log.Level)
		conn, err := openLedger(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer conn.close()

		q := resource.NewQuery()
		q.Page, _ = cmd.Flags().GetInt("page")
		q.PageSize, _ = cmd.Flags().GetInt("size")
		if q.PageSize == 0 {
			q.PageSize = cfg.UI.PageSize
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		page, err := resource.NewLister(conn.client, res, log).Fetch(ctx, q)
		if err != nil {
			return err
		}

		headers := []string{"ID"}
		for _, c := range res.Columns {
			headers = append(headers, c.Label)
		}
		t := newTable(headers...)
		for _, row := range page.Items {
			t.Row(append([]string{fmt.Sprintf("%d", row.ID)}, row.Cells...)...)
		}
		fmt.Println(t)

		if page.TotalKnown {
			fmt.Printf("Halaman %d dari %d (%s data)\n", page.Page, max(1, page.Pages()), humanize.Comma(int64(page.Total)))
		} else {
			fmt.Printf("Halaman %d\n", page.Page)
		}
		return nil
	},
}

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List every resource the dashboard manages",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := catalog.New()
		if err != nil {
			return err
		}
		t := newTable("Bagian", "Nama", "Judul", "Fungsi")
		sections, groups := registry.Sections()
		for _, s := range sections {
			for _, res := range groups[s] {
				t.Row(s, res.Name, res.Title, res.Calls.List)
			}
		}
		fmt.Println(t)
		return nil
	},
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(screens.DimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return screens.HeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

// loadConfig reads the config file and env, then applies the --mode flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.Ledger.Mode = mode
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().String("mode", "", "Ledger mode: local, devnet or evm (overrides config)")

	devnetServeCmd.Flags().String("addr", "", "Listen address (default from config)")
	devnetServeCmd.Flags().Bool("seed", false, "Seed sample data before serving")
	devnetTxsCmd.Flags().Int("limit", 20, "Number of transactions to show")

	devnetCmd.AddCommand(devnetServeCmd)
	devnetCmd.AddCommand(devnetMigrateCmd)
	devnetCmd.AddCommand(devnetSeedCmd)
	devnetCmd.AddCommand(devnetTxsCmd)

	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("size", 0, "Page size (default from config)")

	rootCmd.AddCommand(devnetCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(resourcesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
