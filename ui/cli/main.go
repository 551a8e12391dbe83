// Copyright (c) 2026 Lorekeeper Team
// Lorekeeper - community record privacy vault
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go wires up the Cobra command tree: the root command (which starts
// the TUI when no subcommand is given), the maintenance commands (audit,
// backup, restore, migrate, db-maintain) and the shared service setup every
// command runs first.

package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"runtime/debug"

	log "github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lorekeeper/lorekeeper/buildvars"
	"github.com/lorekeeper/lorekeeper/internal/config"
	"github.com/lorekeeper/lorekeeper/internal/db"
	"github.com/lorekeeper/lorekeeper/internal/i18n"
	"github.com/lorekeeper/lorekeeper/internal/logging"
	"github.com/lorekeeper/lorekeeper/internal/model"
	"github.com/lorekeeper/lorekeeper/internal/tui"
)

// Stamped via -ldflags on release builds; "dev" otherwise.
var (
	version   = "dev"
	gitCommit = "dev"
	buildDate = ""
)

var (
	cfgFile         string
	fullRestore     bool
	verbose         bool
	showVersionFlag bool

	appConfig config.Config
)

// setupDefaultServices loads the config, initializes i18n and opens the
// database. Every command runs through it, either via the root's
// PersistentPreRunE or its own PreRunE; repeated calls are harmless.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	// Startup diagnostics, visible only with --verbose.
	if wd, wderr := os.Getwd(); wderr == nil {
		log.Debugf("startup cwd: %s", wd)
	}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "LOREKEEPER_") {
			log.Debugf("env: %s", kv)
		}
	}

	defaults := map[string]any{
		"database.type": "sqlite",
		"database.dsn":  "./lorekeeper.db",
		"language":      "en",
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run, or the config file was deleted. Seed a default one but
		// keep going either way; the app runs fine on defaults.
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			log.Warnf("default config file was not written: %v", writeErr)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// A config file can carry empty values for these fields; backfill from
	// the defaults so the rest of the code never sees blanks.
	if appConfig.Database.Type == "" {
		appConfig.Database.Type = defaults["database.type"].(string)
	}
	if appConfig.Database.DSN == "" {
		appConfig.Database.DSN = defaults["database.dsn"].(string)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}

	i18n.Init(appConfig.Language)

	// Tests may have opened a store already; leave it alone.
	if !db.IsInitialized() {
		if err := db.InitDB(appConfig.Database.Type, appConfig.Database.DSN); err != nil {
			return errors.New(i18n.T("config.error_init_db", err))
		}
	}

	return nil
}

// Execute runs the CLI entrypoint. The root main package calls this and
// handles process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// applyDefaultFlags registers the database flags on a command unless they
// are already there. The subcommands are package-level while NewRootCmd is
// called per test, and pflag panics on duplicate definitions.
func applyDefaultFlags(cmd *cobra.Command) {
	if cmd.Flags().Lookup("database.type") == nil {
		cmd.Flags().String("database.type", "sqlite", "database backend: sqlite, postgres or mysql")
	}
	if cmd.Flags().Lookup("database.dsn") == nil {
		cmd.Flags().String("database.dsn", "./lorekeeper.db", "database connection string")
	}
}

// getConfigPathFromCli returns the --config path when the user set one, nil
// otherwise. A set-but-missing file is an error rather than a silent
// fallback to the search path.
func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd builds the root command with all flags and subcommands
// attached. Tests call it repeatedly to get isolated command trees.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lorekeeper",
		Short: "Lorekeeper is a privacy vault for community-contributed records.",
		Long: `Lorekeeper protects community-contributed records with passphrase-based
encryption, sensitivity redaction and role-based access control. Records
are sealed into tamper-evident envelopes; opening one requires the
passphrase it was sealed under. A database is the source of truth.

Running without a subcommand will launch the interactive TUI.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Println(compositeVersionString())
				os.Exit(0)
			}
			if verbose {
				log.SetLevel(log.DebugLevel)
				logging.SetDebug(true)
				db.SetDebug(true)
			}
			return setupDefaultServices(cmd, args)
		},
		Run: func(cmd *cobra.Command, args []string) {
			// Services are up at this point. Language changes made inside
			// the TUI are persisted back to the config file through this
			// saver.
			tui.SetConfigSaver(tui.ConfigSaverFunc(func() error {
				appConfig.Language = i18n.GetLang()
				return config.WriteConfigFile(&appConfig, false)
			}))
			tui.Run()
		},
	}

	cmd.Version = compositeVersionString()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output, including SQL logs")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "print the version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the config file")
	cmd.PersistentFlags().String("language", "en", "interface language (en, de)")
	applyDefaultFlags(cmd)

	// Per-command flags, guarded the same way as applyDefaultFlags.
	applyDefaultFlags(auditCmd)
	if auditCmd.Flags().Lookup("limit") == nil {
		auditCmd.Flags().IntP("limit", "n", 0, "Show only the most recent N entries (0 means all)")
	}

	applyDefaultFlags(dbMaintainCmd)
	applyDefaultFlags(backupCmd)
	applyDefaultFlags(restoreCmd)
	if restoreCmd.Flags().Lookup("full") == nil {
		restoreCmd.Flags().BoolVar(&fullRestore, "full", false, "wipe the database and restore everything from the backup")
	}

	if migrateCmd.Flags().Lookup("type") == nil {
		migrateCmd.Flags().String("type", "", "target database backend: sqlite, postgres or mysql")
		migrateCmd.Flags().String("dsn", "", "target database connection string")
	}

	// `lorekeeper version` for scripts and CI, alongside the -V flag.
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			fmt.Printf("version: %s\n", v)
			fmt.Printf("commit: %s\n", c)
			if d != "" {
				fmt.Printf("built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		recordCmd,
		sealCmd,
		openCmd,
		redactCmd,
		accessCmd,
		auditCmd,
		dbMaintainCmd,
		backupCmd,
		restoreCmd,
		migrateCmd,
		versionCmd,
	)

	return cmd
}

// compositeVersionString renders the one-line version shown by --version
// and stamped on the root command.
func compositeVersionString() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary, preferring module build info over the
// ldflags defaults. Passing nil reads the runtime's build info; tests pass
// a synthetic one.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	versionOut = buildvars.VersionOrDefault(version)
	commitOut = gitCommit
	dateOut = buildDate

	if info == nil {
		info, _ = debug.ReadBuildInfo()
	}
	if info != nil {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			versionOut = v
		}
		// Binaries built from a consumer module carry the version on the
		// dependency entry instead of Main.
		if versionOut == "dev" || versionOut == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/lorekeeper/lorekeeper" && dep.Version != "" {
					versionOut = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					commitOut = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					dateOut = s.Value
				}
			}
		}
	}

	// Last resort: an ldflags commit is better than "dev".
	if versionOut == "dev" && gitCommit != "dev" && gitCommit != "" {
		versionOut = gitCommit
	}
	return versionOut, commitOut, dateOut
}

// auditCmd prints the audit trail. Every mutating operation (adding or
// deleting records, sealing, restoring backups) is recorded with the
// operating system user that performed it.
var auditCmd = &cobra.Command{
	Use:     "audit",
	Short:   "Show the audit log",
	Long:    `Prints the audit log in table format, most recent entries first.`,
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := db.GetAllAuditLogEntries()
		if err != nil {
			return fmt.Errorf("failed to load audit log: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println(i18n.T("audit.cli_empty"))
			return nil
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIMESTAMP\tUSER\tACTION\tDETAILS")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				e.ID, e.Timestamp, e.Username, e.Action, e.Details)
		}
		w.Flush()

		return nil
	},
}

// dbMaintainCmd compacts the configured database with whatever statements
// its engine offers.
var dbMaintainCmd = &cobra.Command{
	Use:   "db-maintain",
	Short: "Compact and optimize the configured database",
	Long: `Runs the maintenance statements of the configured engine: VACUUM and
PRAGMA optimize on SQLite, VACUUM ANALYZE on PostgreSQL, OPTIMIZE TABLE
on MySQL.`,
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		if err := db.RunDBMaintenance(appConfig.Database.Type, appConfig.Database.DSN); err != nil {
			fmt.Printf("Database maintenance failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Maintenance completed successfully")
	},
}

// promptForConfirmation prints the prompt and returns the user's answer,
// trimmed and lowercased.
func promptForConfirmation(prompt string) string {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.ToLower(strings.TrimSpace(line))
}

// backupCmd dumps every table into one zstd-compressed JSON file.
var backupCmd = &cobra.Command{
	Use:   "backup [output-file]",
	Short: "Write a compressed JSON backup of the vault",
	Long: `Writes all records, sealed envelopes and the audit log into a single
Zstandard-compressed JSON file. A missing '.zst' suffix is appended to
the given name; with no argument the file is named
'lorekeeper-backup-YYYY-MM-DD.json.zst'.

The resulting file feeds both 'restore' and 'migrate'.

Examples:
  lorekeeper backup
  lorekeeper backup my-backup.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		outputFile := fmt.Sprintf("lorekeeper-backup-%s.json.zst", time.Now().Format("2006-01-02"))
		if len(args) > 0 {
			outputFile = ensureZstSuffix(args[0])
		}
		fmt.Println(i18n.T("backup.cli_starting"))
		data, err := db.ExportDataForBackup()
		if err != nil {
			log.Fatalf("%s", i18n.T("backup.cli_error_export", err))
		}
		if err := writeCompressedBackup(outputFile, data); err != nil {
			log.Fatalf("%s", i18n.T("backup.cli_error_write", err))
		}
		fmt.Println(i18n.T("backup.cli_success", outputFile))
	},
}

// ensureZstSuffix appends ".zst" when the name does not already carry it.
func ensureZstSuffix(name string) string {
	if strings.HasSuffix(name, ".zst") {
		return name
	}
	return name + ".zst"
}

// restoreCmd loads a backup file back into the vault. Without --full it
// only adds rows that are missing; with --full it wipes everything first.
var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file.zst>",
	Short: "Load the vault from a compressed JSON backup",
	Long: `Reads a backup written by 'lorekeeper backup' and merges it into the
configured database. The default mode integrates: rows that already
exist are left untouched and only missing ones are added, so a restore
can be repeated safely.

With --full the database is WIPED before the import. There is no undo;
the command asks for confirmation first.

Examples:
  lorekeeper restore ./lorekeeper-backup-2026-08-23.json.zst
  lorekeeper restore --full ./lorekeeper-backup-2026-08-23.json.zst`,
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		if fullRestore {
			if promptForConfirmation(i18n.T("restore.cli_confirm_full")) != "yes" {
				fmt.Println(i18n.T("restore.cli_cancelled"))
				return
			}
		}
		fmt.Println(i18n.T("restore.cli_starting", path))
		data, err := readCompressedBackup(path)
		if err != nil {
			log.Fatalf("%s", i18n.T("restore.cli_error_read", err))
		}
		if fullRestore {
			err = db.ImportDataFromBackup(data)
		} else {
			err = db.IntegrateDataFromBackup(data)
		}
		if err != nil {
			log.Fatalf("%s", i18n.T("restore.cli_error_import", err))
		}
		fmt.Println(i18n.T("restore.cli_success"))
	},
}

// readCompressedBackup decodes a zstd-compressed JSON backup file.
func readCompressedBackup(filename string) (*model.BackupData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer func() { _ = f.Close() }()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &data, nil
}

// writeCompressedBackup streams the backup JSON through a zstd writer so
// the whole dump never sits in memory uncompressed.
func writeCompressedBackup(filename string, data *model.BackupData) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer func() { _ = f.Close() }()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	defer func() { _ = zw.Close() }()

	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ") // Readable once decompressed
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// migrateCmd copies the whole vault into a different database backend.
var migrateCmd = &cobra.Command{
	Use:   "migrate --type <db-type> --dsn <target-dsn>",
	Short: "Copy all data into a different database backend",
	Long: `Exports everything from the configured database, opens the target named
by --type and --dsn, brings its schema up to date and imports the
export there. The source database is left untouched; point the config
at the target afterwards to switch over.

Example:
  lorekeeper migrate --type postgres --dsn "host=localhost user=lorekeeper dbname=lorekeeper"`,
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetType, _ := cmd.Flags().GetString("type")
		targetDSN, _ := cmd.Flags().GetString("dsn")
		if targetType == "" || targetDSN == "" {
			return errors.New(i18n.T("migrate.cli_error_flags"))
		}
		fmt.Println(i18n.T("migrate.cli_starting_backup"))
		data, err := db.ExportDataForBackup()
		if err != nil {
			log.Fatalf("%s", i18n.T("migrate.cli_error_backup", err))
		}
		fmt.Println(i18n.T("migrate.cli_connecting_target", targetType))
		target, err := db.NewStoreFromDSN(targetType, targetDSN)
		if err != nil {
			log.Fatalf("%s", i18n.T("migrate.cli_error_target", err))
		}
		defer func() { _ = target.Close() }()
		if err := target.ImportDataFromBackup(data); err != nil {
			log.Fatalf("%s", i18n.T("migrate.cli_error_import", err))
		}
		fmt.Println(i18n.T("migrate.cli_success"))
		fmt.Println(i18n.T("migrate.cli_next_steps"))
		return nil
	},
}
