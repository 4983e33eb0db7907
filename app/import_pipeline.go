package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sheetimport/adapters/excel"
	"sheetimport/adapters/sheets"
	"sheetimport/domain/core"
	"sheetimport/domain/grid"
	"sheetimport/domain/task"
	"sheetimport/internal/collaborator"
	"sheetimport/internal/mapping"
	"sheetimport/internal/materialize"
	"sheetimport/internal/notify"
	"sheetimport/ports"

	"github.com/sethvargo/go-retry"
)

// State is a stage of the import workflow
type State string

const (
	StateSourcing               State = "sourcing"
	StateTabSelection           State = "tab_selection"
	StateMapping                State = "mapping"
	StatePreviewing             State = "previewing"
	StateConfirmingNotification State = "confirming_notification"
	StateCommitting             State = "committing"
	StateDone                   State = "done"
)

// RemoteSource resolves share links into grids
type RemoteSource interface {
	Resolve(ctx context.Context, rawURL string) (*sheets.Resolution, error)
	SelectTab(ctx context.Context, ref sheets.DocumentRef, tabID int) (*grid.RawGrid, error)
	Invalidate()
}

// ProgressFunc receives one event after each committed task
type ProgressFunc func(task.ImportProgress)

// PipelineOptions tunes the commit stage
type PipelineOptions struct {
	NotifyAttempts uint64
	NotifyBackoff  time.Duration
}

// DefaultPipelineOptions returns the options used by the service
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		NotifyAttempts: 3,
		NotifyBackoff:  200 * time.Millisecond,
	}
}

// CommitReport summarizes a finished commit
type CommitReport struct {
	Created              []core.TaskID         `json:"created"`
	NotificationsSent    int                   `json:"notifications_sent"`
	NotificationFailures []NotificationFailure `json:"notification_failures,omitempty"`
}

// NotificationFailure records a recipient whose notification could not be sent
type NotificationFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// ImportPipeline drives one import session from source to commit. It holds
// the state of a single session and is not safe for concurrent use.
type ImportPipeline struct {
	reader        *excel.Reader
	remote        RemoteSource
	collaborators *collaborator.Resolver
	options       PipelineOptions

	state      State
	sourceName string
	document   *sheets.DocumentRef
	workbook   *excel.Workbook
	tabs       []grid.Tab
	grid       *grid.RawGrid
	mapping    task.ColumnMapping

	result         *materialize.Result
	groups         []task.NotificationGroup
	notifyOnCommit bool

	created []core.TaskID
	report  *CommitReport
}

// NewImportPipeline creates a pipeline in the sourcing state. remote may be
// nil when only uploaded files are accepted.
func NewImportPipeline(reader *excel.Reader, remote RemoteSource, directory task.Directory, options PipelineOptions) *ImportPipeline {
	if options.NotifyAttempts == 0 {
		options.NotifyAttempts = 1
	}
	if options.NotifyBackoff <= 0 {
		options.NotifyBackoff = time.Millisecond
	}
	return &ImportPipeline{
		reader:        reader,
		remote:        remote,
		collaborators: collaborator.NewResolver(directory),
		options:       options,
		state:         StateSourcing,
		mapping:       task.NewColumnMapping(),
	}
}

// State returns the current stage
func (p *ImportPipeline) State() State {
	return p.state
}

// SourceName returns the uploaded file name or share link
func (p *ImportPipeline) SourceName() string {
	return p.sourceName
}

// Tabs returns the tabs offered for selection
func (p *ImportPipeline) Tabs() []grid.Tab {
	return p.tabs
}

// Grid returns the loaded grid, nil before a tab is chosen
func (p *ImportPipeline) Grid() *grid.RawGrid {
	return p.grid
}

func (p *ImportPipeline) require(op string, states ...State) error {
	for _, s := range states {
		if p.state == s {
			return nil
		}
	}
	return core.NewTransitionError(op, string(p.state))
}

// LoadFile reads an uploaded file. A workbook with several sheets moves to
// tab selection; anything else goes straight to mapping.
func (p *ImportPipeline) LoadFile(data []byte, filename string) error {
	if err := p.require("load file", StateSourcing, StateTabSelection); err != nil {
		return err
	}

	format := excel.SniffFormat(data, filename)
	if format == grid.FormatXLSX {
		wb, err := p.reader.ReadWorkbook(data)
		if err != nil {
			return err
		}
		tabs := wb.Tabs()
		if len(tabs) == 0 {
			return core.NewUnreadableSourceError("workbook has no sheets", nil)
		}
		p.sourceName = filename
		p.document = nil
		if len(tabs) > 1 {
			p.workbook = wb
			p.tabs = tabs
			p.state = StateTabSelection
			return nil
		}
		g, err := wb.Grid(tabs[0].ID)
		if err != nil {
			return err
		}
		p.enterMapping(g)
		return nil
	}

	g, err := p.reader.ReadGrid(data, format)
	if err != nil {
		return err
	}
	p.sourceName = filename
	p.document = nil
	p.workbook = nil
	p.enterMapping(g)
	return nil
}

// LoadURL resolves a share link. A document with several tabs moves to tab
// selection; the workbook stays cached until mapping is confirmed.
func (p *ImportPipeline) LoadURL(ctx context.Context, rawURL string) error {
	if err := p.require("load url", StateSourcing, StateTabSelection); err != nil {
		return err
	}
	if p.remote == nil {
		return fmt.Errorf("%w: remote spreadsheets are not enabled", core.ErrUnreadableSource)
	}

	res, err := p.remote.Resolve(ctx, rawURL)
	if err != nil {
		return err
	}

	doc := res.Document
	p.sourceName = rawURL
	p.document = &doc
	p.workbook = nil
	if res.NeedsTabSelection {
		p.tabs = res.Tabs
		p.state = StateTabSelection
		return nil
	}
	p.enterMapping(res.Grid)
	return nil
}

// SelectTab loads one tab of a multi-tab source
func (p *ImportPipeline) SelectTab(ctx context.Context, tabID int) error {
	if err := p.require("select tab", StateTabSelection); err != nil {
		return err
	}

	var (
		g   *grid.RawGrid
		err error
	)
	switch {
	case p.workbook != nil:
		g, err = p.workbook.Grid(tabID)
	case p.document != nil && p.remote != nil:
		g, err = p.remote.SelectTab(ctx, *p.document, tabID)
	default:
		return core.NewTransitionError("select tab", string(p.state))
	}
	if err != nil {
		return err
	}
	p.enterMapping(g)
	return nil
}

func (p *ImportPipeline) enterMapping(g *grid.RawGrid) {
	p.grid = g
	p.mapping = mapping.AutoMap(g.Headers)
	p.state = StateMapping
	log.Printf("[Pipeline] %s loaded: %d columns, %d rows, %d fields auto-mapped",
		p.sourceName, g.Width(), len(g.Rows), p.mapping.Len())
}

// Mapping returns a copy of the current column mapping
func (p *ImportPipeline) Mapping() task.ColumnMapping {
	return p.mapping.Clone()
}

// SetColumn maps field to column, releasing the column from any other field
func (p *ImportPipeline) SetColumn(field task.FieldKey, column int) error {
	if err := p.require("set column", StateMapping); err != nil {
		return err
	}
	if column < 0 || column >= p.grid.Width() {
		return fmt.Errorf("%w: %d not in [0, %d)", core.ErrInvalidColumn, column, p.grid.Width())
	}
	p.mapping.Set(field, column)
	return nil
}

// ClearColumn unmaps field
func (p *ImportPipeline) ClearColumn(field task.FieldKey) error {
	if err := p.require("clear column", StateMapping); err != nil {
		return err
	}
	p.mapping.Clear(field)
	return nil
}

// ReplaceMapping swaps in a caller-built mapping wholesale
func (p *ImportPipeline) ReplaceMapping(m task.ColumnMapping) error {
	if err := p.require("replace mapping", StateMapping); err != nil {
		return err
	}
	for _, col := range m.SortedColumns() {
		if col < 0 || col >= p.grid.Width() {
			return fmt.Errorf("%w: %d not in [0, %d)", core.ErrInvalidColumn, col, p.grid.Width())
		}
	}
	p.mapping = m.Clone()
	return nil
}

// AutoMap discards manual changes and recomputes the mapping
func (p *ImportPipeline) AutoMap() error {
	if err := p.require("auto map", StateMapping); err != nil {
		return err
	}
	p.mapping = mapping.AutoMap(p.grid.Headers)
	return nil
}

// ConfirmMapping materializes the rows. Mapping errors keep the pipeline in
// the mapping stage; success moves to previewing and drops the cached
// workbook.
func (p *ImportPipeline) ConfirmMapping() error {
	if err := p.require("confirm mapping", StateMapping); err != nil {
		return err
	}

	res, err := materialize.Materialize(p.grid, p.mapping.Clone(), p.collaborators)
	if err != nil {
		return err
	}

	p.result = res
	p.groups = notify.Consolidate(res.Tasks)
	p.created = nil
	p.workbook = nil
	if p.remote != nil {
		p.remote.Invalidate()
	}
	p.state = StatePreviewing

	log.Printf("[Pipeline] %d tasks materialized, %d rows skipped, %d notification groups",
		len(res.Tasks), res.Skipped(), len(p.groups))
	return nil
}

// Tasks returns the materialized tasks
func (p *ImportPipeline) Tasks() []task.ImportedTask {
	if p.result == nil {
		return nil
	}
	return p.result.Tasks
}

// Preview returns the materialized tasks and their summary
func (p *ImportPipeline) Preview() (*materialize.Result, PreviewSummary, error) {
	if err := p.require("preview", StatePreviewing, StateConfirmingNotification, StateCommitting, StateDone); err != nil {
		return nil, PreviewSummary{}, err
	}
	return p.result, Summarize(p.result, p.groups), nil
}

// BackToMapping returns from the preview to adjust the mapping. Not allowed
// once part of the batch is committed.
func (p *ImportPipeline) BackToMapping() error {
	if err := p.require("back to mapping", StatePreviewing); err != nil {
		return err
	}
	if len(p.created) > 0 {
		return fmt.Errorf("%w: %d tasks already created", core.ErrInvalidTransition, len(p.created))
	}
	p.result = nil
	p.groups = nil
	p.state = StateMapping
	return nil
}

// ConfirmPreview accepts the preview. Without any notification group the
// notification stage is skipped.
func (p *ImportPipeline) ConfirmPreview() error {
	if err := p.require("confirm preview", StatePreviewing); err != nil {
		return err
	}
	if len(p.groups) == 0 {
		p.notifyOnCommit = false
		p.state = StateCommitting
		return nil
	}
	p.state = StateConfirmingNotification
	return nil
}

// NotificationGroups returns the per-recipient grouping of open tasks
func (p *ImportPipeline) NotificationGroups() []task.NotificationGroup {
	return p.groups
}

// ConfirmNotifications records whether notifications go out after commit
func (p *ImportPipeline) ConfirmNotifications(send bool) error {
	if err := p.require("confirm notifications", StateConfirmingNotification); err != nil {
		return err
	}
	p.notifyOnCommit = send
	p.state = StateCommitting
	return nil
}

// Committed returns the ids of tasks created so far
func (p *ImportPipeline) Committed() []core.TaskID {
	return p.created
}

// Report returns the outcome of a finished commit
func (p *ImportPipeline) Report() *CommitReport {
	return p.report
}

// Commit creates the tasks in row order, reporting progress after each. The
// first failure stops the batch and returns to previewing with a
// *core.CommitItemFailedError; committing again resumes after the tasks
// already created. Notification failures are reported, not returned.
func (p *ImportPipeline) Commit(ctx context.Context, creator ports.TaskCreator, notifier ports.Notifier, onProgress ProgressFunc) (*CommitReport, error) {
	if err := p.require("commit", StateCommitting); err != nil {
		return nil, err
	}

	tasks := p.result.Tasks
	total := len(tasks)
	for i := len(p.created); i < total; i++ {
		t := tasks[i]

		err := ctx.Err()
		var id core.TaskID
		if err == nil {
			id, err = creator.CreateTask(ctx, t)
		}
		if err != nil {
			p.state = StatePreviewing
			log.Printf("[Pipeline] commit stopped at item %d/%d (%q): %v", i+1, total, t.Title, err)
			return nil, &core.CommitItemFailedError{Succeeded: len(p.created), Index: i, Title: t.Title, Err: err}
		}

		p.created = append(p.created, id)
		if onProgress != nil {
			onProgress(task.ImportProgress{Current: i + 1, Total: total, CurrentItemLabel: t.Title})
		}
	}

	report := &CommitReport{Created: append([]core.TaskID(nil), p.created...)}
	if p.notifyOnCommit && notifier != nil {
		p.sendNotifications(ctx, notifier, report)
	}

	p.report = report
	p.state = StateDone
	log.Printf("[Pipeline] commit done: %d tasks, %d notifications sent, %d failed",
		len(report.Created), report.NotificationsSent, len(report.NotificationFailures))
	return report, nil
}

func (p *ImportPipeline) sendNotifications(ctx context.Context, notifier ports.Notifier, report *CommitReport) {
	for _, g := range p.groups {
		backoff := retry.WithMaxRetries(p.options.NotifyAttempts-1, retry.NewExponential(p.options.NotifyBackoff))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := notifier.Notify(ctx, g); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			log.Printf("[Pipeline] notification to %s failed: %v", g.RecipientEmail, err)
			report.NotificationFailures = append(report.NotificationFailures, NotificationFailure{
				Email: g.RecipientEmail,
				Error: err.Error(),
			})
			continue
		}
		report.NotificationsSent++
	}
}

// Reset discards everything and returns to sourcing
func (p *ImportPipeline) Reset() {
	if p.remote != nil {
		p.remote.Invalidate()
	}
	*p = ImportPipeline{
		reader:        p.reader,
		remote:        p.remote,
		collaborators: p.collaborators,
		options:       p.options,
		state:         StateSourcing,
		mapping:       task.NewColumnMapping(),
	}
}
