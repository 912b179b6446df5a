package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"ft-go/internal/app"
	"ft-go/internal/config"
	"ft-go/internal/ft"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an FTApp planning under the given
// confirmer. The caller must defer a.Close().
func newApp(confirm ft.Confirmer) (*app.FTApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewFTApp(cfg, confirm)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "ft",
	Short: "Filing tool for the practice's project server",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init PROJECTS_ROOT",
	Short: "Initialize configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		projectsRoot, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving projects root: %w", err)
		}

		// Create config with defaults
		cfg := config.NewConfig(projectsRoot, defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Projects Root: %s\n", projectsRoot)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Projects Root: %s\n", cfg.ProjectsRoot)
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Database:      %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		if cfg.Watch.Dir != "" {
			fmt.Printf("Watch Dir:     %s\n", cfg.Watch.Dir)
		}
		return nil
	},
}

// file command
var fileCmd = &cobra.Command{
	Use:   "file PATH...",
	Short: "File loose files into their project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := fileOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(app.NewConfirmer())
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.PlanFiles(cmd.Context(), args, opts)
		if err != nil {
			return err
		}
		printPlan(plan)

		result, err := a.Commit(plan)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

// email command
var emailCmd = &cobra.Command{
	Use:   "email EML",
	Short: "File a saved email and its attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileOpts, err := fileOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
		opts := ft.EmailOptions{FileOptions: fileOpts}
		opts.IncludeSmall, _ = cmd.Flags().GetBool("include-small")
		opts.GeneratePDF, _ = cmd.Flags().GetBool("pdf")
		opts.Screenshots, _ = cmd.Flags().GetBool("screenshots")

		a, err := newApp(app.NewConfirmer())
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.PlanEmailFile(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}
		if plan == nil {
			fmt.Println("Already filed; skipped.")
			return nil
		}
		printPlan(plan)

		result, err := a.Commit(plan)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Watch a folder and file whatever settles in it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(ft.AutoPolicy{})
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := a.Config()
		dir := cfg.Watch.Dir
		if len(args) > 0 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no watch folder: pass DIR or set watch.dir in the config")
		}

		settleSeconds, _ := cmd.Flags().GetInt("settle")
		if settleSeconds == 0 {
			settleSeconds = cfg.Watch.SettleSeconds
		}
		if settleSeconds == 0 {
			settleSeconds = 2
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s (Ctrl-C to stop)\n", dir)
		return a.Watch(ctx, dir, time.Duration(settleSeconds)*time.Second)
	},
}

// projects command
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List indexed projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(ft.AutoPolicy{})
		if err != nil {
			return err
		}
		defer a.Close()

		projects := a.Projects()
		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("%-6s  %s\n", p.Job, p.Name)
		}
		return nil
	},
}

// rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List loaded filing rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(ft.AutoPolicy{})
		if err != nil {
			return err
		}
		defer a.Close()

		ruleList := a.Rules()
		if len(ruleList) == 0 {
			fmt.Println("No filing rules loaded.")
			return nil
		}
		for _, r := range ruleList {
			paused := ""
			if r.Paused {
				paused = "  [paused]"
			}
			fmt.Printf("%-40s  ->  %s%s\n", strings.Join(r.Keywords, ", "), r.Location, paused)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View filing operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(ft.AutoPolicy{})
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No filing operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-13s  %s  %-15s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the filing audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		job, _ := cmd.Flags().GetString("job")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(ft.AutoPolicy{})
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.GetLog(job, limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No log entries.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %-6s  %-10s  %-8s  %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.JobNumber,
				e.Decision,
				e.Outcome,
				e.Artifact,
			)
			if e.Destinations != "" {
				fmt.Printf("%33s-> %s\n", "", e.Destinations)
			}
			if e.Detail != "" {
				fmt.Printf("%33s%s\n", "", e.Detail)
			}
		}
		return nil
	},
}

// emails command
var emailsCmd = &cobra.Command{
	Use:   "emails",
	Short: "View filed emails",
	RunE: func(cmd *cobra.Command, args []string) error {
		job, _ := cmd.Flags().GetString("job")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(ft.AutoPolicy{})
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.GetEmails(job, limit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No emails filed.")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %-7s  %-6s  %s\n",
				r.FiledAt.Format("2006-01-02 15:04"),
				r.Direction,
				r.JobNumber,
				r.Subject,
			)
			fmt.Printf("%27s-> %s\n", "", r.FiledTo)
		}
		return nil
	},
}

// contacts command
var contactsCmd = &cobra.Command{
	Use:   "contacts JOB",
	Short: "View the contacts remembered for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(ft.AutoPolicy{})
		if err != nil {
			return err
		}
		defer a.Close()

		contacts, err := a.GetContacts(args[0])
		if err != nil {
			return err
		}

		if len(contacts) == 0 {
			fmt.Println("No contacts recorded.")
			return nil
		}

		for _, c := range contacts {
			fmt.Printf("%-30s  last used %s\n", c.Name, c.LastUsedAt.Format("2006-01-02"))
		}
		return nil
	},
}

// addFilingFlags registers the flags shared by the file and email
// commands.
func addFilingFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("job", "j", "", "Job number or custom reference to file under")
	cmd.Flags().String("contact", "", "Contact name for the dated folder")
	cmd.Flags().String("desc", "", "Description for the dated folder")
	cmd.Flags().String("direction", "", "Filing direction, in or out")
	cmd.Flags().StringArray("also", nil, "Extra destination folder, relative to the project (repeatable)")
	cmd.Flags().Bool("dated", false, "File drawings through a dated folder as well")
	cmd.Flags().String("keystage", "", "Archive a copy under a key-stage folder of this description")
}

// fileOptionsFromFlags reads the shared filing flags into FileOptions.
func fileOptionsFromFlags(cmd *cobra.Command) (ft.FileOptions, error) {
	job, _ := cmd.Flags().GetString("job")
	contact, _ := cmd.Flags().GetString("contact")
	desc, _ := cmd.Flags().GetString("desc")
	directionFlag, _ := cmd.Flags().GetString("direction")
	also, _ := cmd.Flags().GetStringArray("also")
	dated, _ := cmd.Flags().GetBool("dated")
	keyStage, _ := cmd.Flags().GetString("keystage")

	direction, err := ft.ParseDirection(directionFlag)
	if err != nil {
		return ft.FileOptions{}, err
	}

	return ft.FileOptions{
		Reference:   job,
		Contact:     contact,
		Description: desc,
		Direction:   direction,
		Dated:       dated,
		Also:        also,
		KeyStage:    keyStage,
	}, nil
}

// printPlan shows what committing the plan will do.
func printPlan(plan *ft.Plan) {
	fmt.Printf("Filing under job %s\n", plan.Job)
	if plan.Email != nil {
		fmt.Printf("Email %q (%s) from %s\n", plan.Email.Subject, plan.Email.Direction, plan.Email.Sender)
	}

	for _, pa := range plan.Batch {
		if pa.Err != nil {
			fmt.Printf("  %s: %v\n", pa.Artifact.Name, pa.Err)
			continue
		}
		fmt.Printf("  %s\n", pa.Artifact.Name)
		for _, d := range pa.Destinations {
			note := ""
			switch d.Decision {
			case ft.DecisionSkip:
				note = "  [skip]"
			case ft.DecisionRename:
				note = "  [as " + d.FinalName + "]"
			case ft.DecisionOverwrite:
				note = "  [overwrite]"
			}
			if len(d.Supersede) > 0 {
				note += fmt.Sprintf("  [supersedes %d revision(s)]", len(d.Supersede))
			}
			if d.StaleIncoming {
				note += "  [newer revision already filed]"
			}
			fmt.Printf("    -> %s%s\n", d.Dir, note)
		}
		if pa.KeyStageDir != "" {
			fmt.Printf("    -> %s  [key stage]\n", pa.KeyStageDir)
		}
		for _, m := range pa.Suggestions {
			fmt.Printf("    suggestion: %s (%.2f on %q)\n", m.Rule.Location, m.Score, m.Keyword)
		}
	}

	for _, u := range plan.Unplanned {
		fmt.Printf("  %s: %v  [not filed]\n", u.Artifact.Name, u.Reason)
	}
}

// printResult summarizes a committed plan.
func printResult(result *ft.BatchResult) {
	fmt.Printf("Filed %d item(s)", result.Filed)
	if result.Superseded > 0 {
		fmt.Printf(", superseded %d", result.Superseded)
	}
	if result.Skipped > 0 {
		fmt.Printf(", skipped %d", result.Skipped)
	}
	fmt.Println()

	for _, f := range result.Failures {
		fmt.Printf("  failed: %s -> %s: %v\n", f.Artifact.Name, f.Dest, f.Err)
	}
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(fileCmd)
	addFilingFlags(fileCmd)

	rootCmd.AddCommand(emailCmd)
	addFilingFlags(emailCmd)
	emailCmd.Flags().Bool("include-small", false, "Keep attachments below the minimum size")
	emailCmd.Flags().Bool("pdf", false, "Always keep the email body as a PDF")
	emailCmd.Flags().Bool("screenshots", false, "Save large embedded images from outgoing emails")

	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Int("settle", 0, "Seconds a dropped file must stop growing before pickup")

	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(rulesCmd)

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of operations to show")

	rootCmd.AddCommand(logCmd)
	logCmd.Flags().String("job", "", "Only entries for this job number")
	logCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries to show")

	rootCmd.AddCommand(emailsCmd)
	emailsCmd.Flags().String("job", "", "Only emails for this job number")
	emailsCmd.Flags().IntP("limit", "n", 20, "Maximum number of emails to show")

	rootCmd.AddCommand(contactsCmd)
}
