package main

import (
	"fmt"
	"os"
	"time"

	"agentpack/internal/app"
	"agentpack/internal/config"
	"agentpack/internal/pack"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "export", "import").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// resolvePassword resolves the password the codec will use: the --password
// flag first, then AGENTPACK_PASSWORD, then an interactive prompt when stdin
// is a terminal. Returns "" when none is available — the codec reports the
// missing password itself.
func resolvePassword(flagValue string, prompt string) string {
	if flagValue != "" {
		return flagValue
	}
	if pw := os.Getenv("AGENTPACK_PASSWORD"); pw != "" {
		return pw
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err == nil {
			return string(pw)
		}
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "agentpack",
	Short: "Package agent credentials and memory into portable archives",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new agent ID
		agentID := uuid.New().String()

		cfg := config.NewConfig(agentID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Agent ID: %s\n", agentID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Agent ID:  %s\n", cfg.AgentID)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Stores:    %d configured\n", len(cfg.Stores))
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export credentials and memory into an archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		credentials, _ := cmd.Flags().GetStringSlice("credentials")
		memory, _ := cmd.Flags().GetStringSlice("memory")
		output, _ := cmd.Flags().GetString("output")
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		password, _ := cmd.Flags().GetString("password")

		a, err := newApp("export")
		if err != nil {
			return err
		}
		defer a.Close()

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		if encrypt {
			password = resolvePassword(password, "Archive password: ")
		}
		if output == "" {
			output = fmt.Sprintf("agentpack-%s.json", time.Now().UTC().Format("20060102T150405Z"))
		}

		// Flags override the [agent] and [export] config defaults.
		identity, opts := app.ResolveExportRequest(a.Config(), cwd, name, email, credentials, memory)
		opts.Encrypt = encrypt
		opts.Password = password

		archive, fingerprint, err := a.Export(identity, opts, output)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Archive written to %s\n", output)
		fmt.Printf("Fingerprint: %s\n", fingerprint)
		if archive.Encrypted {
			fmt.Println("Sections encrypted with aes-256-gcm")
		}
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Restore an archive's files to disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		password, _ := cmd.Flags().GetString("password")
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		a, err := newApp("import")
		if err != nil {
			return err
		}
		defer a.Close()

		if target == "" {
			target, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
		}

		if archiveIsEncrypted(args[0]) {
			password = resolvePassword(password, "Archive password: ")
		}

		result, err := a.Import(args[0], target, password, overwrite)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Restored for agent %q: %d credential file(s), %d memory file(s)\n",
			result.Agent.Name, result.Restored.Credentials, result.Restored.Memory)
		if skipped := result.Skipped.Credentials + result.Skipped.Memory; skipped > 0 {
			fmt.Printf("Skipped %d existing file(s); use --overwrite to replace them\n", skipped)
		}
		return nil
	},
}

// verify command
var verifyCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Inspect an archive without restoring it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("verify")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Verify(args[0])
		if err != nil {
			return fmt.Errorf("verify failed: %w", err)
		}

		fmt.Printf("Version:     %s\n", report.Version)
		fmt.Printf("Agent:       %s", report.AgentName)
		if report.AgentEmail != "" {
			fmt.Printf(" <%s>", report.AgentEmail)
		}
		fmt.Println()
		fmt.Printf("Exported:    %s\n", report.Exported.Format(time.RFC3339))
		fmt.Printf("Fingerprint: %s\n", report.Fingerprint)
		fmt.Printf("Encrypted:   %t\n", report.Encrypted)
		fmt.Printf("Credentials: %s\n", formatCount(report.CredentialsCount))
		fmt.Printf("Memory:      %s\n", formatCount(report.MemoryCount))
		return nil
	},
}

// archiveIsEncrypted peeks at an archive file to decide whether a password
// prompt is warranted. Read errors are ignored here — import reports them
// properly.
func archiveIsEncrypted(file string) bool {
	f, err := os.Open(file)
	if err != nil {
		return false
	}
	defer f.Close()

	archive, err := pack.Decode(f)
	if err != nil {
		return false
	}
	return archive.Encrypted || archive.Credentials.IsEncrypted() || archive.Memory.IsEncrypted()
}

// formatCount renders a section file count, or "encrypted" when the count is
// unavailable without a password.
func formatCount(n int) string {
	if n < 0 {
		return "encrypted"
	}
	return fmt.Sprintf("%d file(s)", n)
}

// push command
var pushCmd = &cobra.Command{
	Use:   "push FILE",
	Short: "Copy an archive file to a configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storeName, _ := cmd.Flags().GetString("store")

		a, err := newApp("push")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Push(args[0], storeName); err != nil {
			return fmt.Errorf("push failed: %w", err)
		}

		fmt.Printf("Pushed %s\n", args[0])
		return nil
	},
}

// pull command
var pullCmd = &cobra.Command{
	Use:   "pull NAME",
	Short: "Copy an archive from a configured store to a local file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storeName, _ := cmd.Flags().GetString("store")
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp("pull")
		if err != nil {
			return err
		}
		defer a.Close()

		if output == "" {
			output = args[0]
		}

		if err := a.Pull(args[0], storeName, output); err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}

		fmt.Printf("Pulled %s to %s\n", args[0], output)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View archive operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("history")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-8s  %s  %-8s  %-16s  %s  %s\n",
				op.ID,
				op.Kind,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				op.Fingerprint,
				op.AgentName,
				duration,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// export flags
	exportCmd.Flags().String("name", "", "Agent name (default: [agent] name from config)")
	exportCmd.Flags().String("email", "", "Agent email (default: [agent] email from config)")
	exportCmd.Flags().StringSlice("credentials", nil, "Credential file paths (default: [export] credential_paths from config)")
	exportCmd.Flags().StringSlice("memory", nil, "Memory file paths (default: [export] memory_paths from config)")
	exportCmd.Flags().String("output", "", "Output archive path")
	exportCmd.Flags().Bool("encrypt", false, "Encrypt the archive sections")
	exportCmd.Flags().String("password", "", "Archive password (or AGENTPACK_PASSWORD)")

	// import flags
	importCmd.Flags().String("target", "", "Target directory (default: current directory)")
	importCmd.Flags().String("password", "", "Archive password (or AGENTPACK_PASSWORD)")
	importCmd.Flags().Bool("overwrite", false, "Replace files that already exist")

	// store flags
	pushCmd.Flags().String("store", "", "Store name (default: first configured store)")
	pullCmd.Flags().String("store", "", "Store name (default: first configured store)")
	pullCmd.Flags().String("output", "", "Output path (default: archive name)")

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(historyCmd)
}
