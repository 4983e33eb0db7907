package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"sheetimport/adapters/directory"
	"sheetimport/adapters/excel"
	"sheetimport/adapters/memory"
	"sheetimport/adapters/notifier"
	"sheetimport/adapters/postgres"
	"sheetimport/adapters/sheets"
	"sheetimport/app"
	"sheetimport/domain/grid"
	"sheetimport/domain/task"
	"sheetimport/internal/mapping"
	"sheetimport/internal/migration"
	"sheetimport/internal/notify"
	"sheetimport/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "sheetimport-cli",
		Short: "Import spreadsheet rows as project tasks",
	}

	var opts sourceOptions
	rootCmd.PersistentFlags().StringVar(&opts.sheetsBaseURL, "sheets-base-url", sheets.DefaultBaseURL, "Base URL of the spreadsheet host")
	rootCmd.PersistentFlags().DurationVar(&opts.fetchTimeout, "fetch-timeout", 30*time.Second, "Timeout for remote spreadsheet fetches")
	rootCmd.PersistentFlags().IntVar(&opts.tab, "tab", -1, "Tab to import from a multi-tab source")
	_ = rootCmd.PersistentFlags().MarkHidden("sheets-base-url")

	rootCmd.AddCommand(
		newInspectCmd(&opts),
		newImportCmd(&opts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type sourceOptions struct {
	sheetsBaseURL string
	fetchTimeout  time.Duration
	tab           int
}

func newPipeline(opts *sourceOptions, dir task.Directory) *app.ImportPipeline {
	reader := excel.NewReader(excel.DefaultReaderConfig())
	client := sheets.NewClient(sheets.ClientConfig{BaseURL: opts.sheetsBaseURL}, &http.Client{Timeout: opts.fetchTimeout})
	return app.NewImportPipeline(reader, sheets.NewResolver(client, reader), dir, app.DefaultPipelineOptions())
}

// load reads a file path or share link and settles on one tab
func load(ctx context.Context, p *app.ImportPipeline, source string, opts *sourceOptions) error {
	if isURL(source) {
		fetchCtx, cancel := context.WithTimeout(ctx, opts.fetchTimeout)
		defer cancel()
		if err := p.LoadURL(fetchCtx, source); err != nil {
			return err
		}
	} else {
		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("read %s: %w", source, err)
		}
		if err := p.LoadFile(data, source); err != nil {
			return err
		}
	}

	if p.State() != app.StateTabSelection {
		return nil
	}
	if opts.tab < 0 {
		printTabs(p.Tabs())
		return fmt.Errorf("%s has %d tabs, pick one with --tab", source, len(p.Tabs()))
	}
	fetchCtx, cancel := context.WithTimeout(ctx, opts.fetchTimeout)
	defer cancel()
	return p.SelectTab(fetchCtx, opts.tab)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func newInspectCmd(opts *sourceOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file|url>",
		Short: "Show tabs and the proposed column mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPipeline(opts, nil)
			if err := load(cmd.Context(), p, args[0], opts); err != nil {
				return err
			}
			printMapping(p)
			return nil
		},
	}
}

type importOptions struct {
	project       string
	directoryFile string
	mappings      []string
	commit        bool
	notify        bool
	databaseURL   string
	sender        string
}

func newImportCmd(opts *sourceOptions) *cobra.Command {
	var imp importOptions

	cmd := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Preview, and optionally commit, an import",
		Long: `Preview an import and, with --commit, create the tasks.

Example: sheetimport-cli import plan.xlsx --tab 1 --directory members.json --map title=Task --map color= --commit --notify`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, &imp, args[0])
		},
	}

	cmd.Flags().StringVar(&imp.project, "project", "default", "Target project id")
	cmd.Flags().StringVar(&imp.directoryFile, "directory", os.Getenv("DIRECTORY_FILE"), "Collaborator directory JSON file")
	cmd.Flags().StringArrayVar(&imp.mappings, "map", nil, "Mapping override field=column (index or header); empty column unmaps")
	cmd.Flags().BoolVar(&imp.commit, "commit", false, "Create the tasks (dry run otherwise)")
	cmd.Flags().BoolVar(&imp.notify, "notify", false, "Notify assignees after commit")
	cmd.Flags().StringVar(&imp.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL; in-memory store when empty")
	cmd.Flags().StringVar(&imp.sender, "sender", "noreply@sheetimport.local", "Notification sender address")

	return cmd
}

func runImport(ctx context.Context, opts *sourceOptions, imp *importOptions, source string) error {
	var dir task.Directory
	if imp.directoryFile != "" {
		provider, err := directory.LoadFile(imp.directoryFile)
		if err != nil {
			return err
		}
		if dir, err = provider.Directory(ctx, imp.project); err != nil {
			return err
		}
	}

	p := newPipeline(opts, dir)
	if err := load(ctx, p, source, opts); err != nil {
		return err
	}

	overrides, err := parseOverrides(imp.mappings, p.Grid().Headers)
	if err != nil {
		return err
	}
	for _, o := range overrides {
		if o.clear {
			err = p.ClearColumn(o.field)
		} else {
			err = p.SetColumn(o.field, o.column)
		}
		if err != nil {
			return err
		}
	}
	printMapping(p)

	if err := p.ConfirmMapping(); err != nil {
		return err
	}
	res, summary, err := p.Preview()
	if err != nil {
		return err
	}
	printPreview(res.Tasks, summary)
	printGroups(p.NotificationGroups())

	if !imp.commit {
		fmt.Println("\nDry run, nothing created. Pass --commit to create the tasks.")
		return nil
	}

	store, count, closeStore, err := openStore(ctx, imp.databaseURL)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := p.ConfirmPreview(); err != nil {
		return err
	}
	if p.State() == app.StateConfirmingNotification {
		if err := p.ConfirmNotifications(imp.notify); err != nil {
			return err
		}
	}

	outbox := notifier.NewOutbox(notify.RenderOptions{Sender: imp.sender, ProjectName: imp.project})
	report, err := p.Commit(ctx, store.ForProject(imp.project), outbox, func(pr task.ImportProgress) {
		fmt.Printf("[%d/%d] %s\n", pr.Current, pr.Total, pr.CurrentItemLabel)
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nCreated %d tasks, sent %d notifications\n", len(report.Created), report.NotificationsSent)
	for _, f := range report.NotificationFailures {
		fmt.Printf("  notification to %s failed: %s\n", f.Email, f.Error)
	}
	for _, msg := range outbox.List() {
		fmt.Printf("  -> %s: %s\n", msg.To, msg.Subject)
	}
	if n, err := count(ctx, imp.project); err == nil {
		fmt.Printf("Project %s now has %d tasks\n", imp.project, n)
	}
	return nil
}

type countFunc func(ctx context.Context, projectID string) (int, error)

// openStore connects to PostgreSQL when a URL is given, else uses memory
func openStore(ctx context.Context, databaseURL string) (ports.TaskStore, countFunc, func(), error) {
	if databaseURL == "" {
		store := memory.NewTaskStore()
		count := func(_ context.Context, projectID string) (int, error) {
			return len(store.Tasks(projectID)), nil
		}
		return store, count, func() {}, nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	repo := postgres.NewTaskRepository(db)
	return repo, repo.CountByProject, func() { db.Close() }, nil
}

type override struct {
	field  task.FieldKey
	column int
	clear  bool
}

// parseOverrides reads field=column specs. The column is an index or a
// header, matched after normalization.
func parseOverrides(specs []string, headers []string) ([]override, error) {
	out := make([]override, 0, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("--map %q: expected field=column", spec)
		}
		field, ok := task.ParseFieldKey(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("--map %q: unknown field %q", spec, name)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			out = append(out, override{field: field, clear: true})
			continue
		}
		col, err := columnOf(value, headers)
		if err != nil {
			return nil, fmt.Errorf("--map %q: %w", spec, err)
		}
		out = append(out, override{field: field, column: col})
	}
	return out, nil
}

func columnOf(value string, headers []string) (int, error) {
	if idx, err := strconv.Atoi(value); err == nil {
		return idx, nil
	}
	want := mapping.NormalizeHeader(value)
	for i, h := range headers {
		if mapping.NormalizeHeader(h) == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no column named %q", value)
}

func printTabs(tabs []grid.Tab) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAB\tNAME\tROWS")
	for _, t := range tabs {
		fmt.Fprintf(w, "%d\t%s\t%d\n", t.ID, t.Name, t.NonEmptyRows)
	}
	w.Flush()
}

func printMapping(p *app.ImportPipeline) {
	g := p.Grid()
	m := p.Mapping()
	fmt.Printf("%s: %d columns, %d rows\n\n", p.SourceName(), g.Width(), len(g.Rows))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tCOLUMN\tHEADER")
	for _, mh := range mapping.MappedHeaders(m, g.Headers) {
		fmt.Fprintf(w, "%s\t%d\t%s\n", mh.Field, mh.Column, mh.Header)
	}
	w.Flush()

	if unmapped := mapping.Unmapped(m, g.Width()); len(unmapped) > 0 {
		names := make([]string, len(unmapped))
		for i, col := range unmapped {
			names[i] = fmt.Sprintf("%d:%s", col, g.Headers[col])
		}
		fmt.Printf("\nUnmapped columns: %s\n", strings.Join(names, ", "))
	}
}

func printPreview(tasks []task.ImportedTask, s app.PreviewSummary) {
	fmt.Printf("\n%d tasks, %d rows skipped\n\n", s.Tasks, s.SkippedRows)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tTITLE\tSTATUS\tPRIORITY\tDUE\tASSIGNEE")
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		assignee := t.AssignedName
		if assignee == "" && t.AssignedDisplayText != "" {
			assignee = t.AssignedDisplayText + " (unresolved)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", t.RowNumber, t.Title, t.Status, t.Priority, due, assignee)
	}
	w.Flush()

	fmt.Printf("\nAssigned %d, unresolved %d, unassigned %d, with due date %d\n",
		s.Assigned, s.Unresolved, s.Unassigned, s.WithDueDate)
	if s.EstimatedHours.Count > 0 {
		fmt.Printf("Estimated hours: total %.1f, mean %.1f, median %.1f over %d tasks\n",
			s.EstimatedHours.Total, s.EstimatedHours.Mean, s.EstimatedHours.Median, s.EstimatedHours.Count)
	}
}

func printGroups(groups []task.NotificationGroup) {
	if len(groups) == 0 {
		return
	}
	fmt.Printf("\n%d recipients would be notified:\n", len(groups))
	for _, g := range groups {
		fmt.Printf("  %s <%s>: %d tasks\n", g.RecipientDisplayName, g.RecipientEmail, len(g.Tasks))
	}
}
