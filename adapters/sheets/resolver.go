package sheets

import (
	"context"
	"fmt"
	"sync"

	"sheetimport/adapters/excel"
	"sheetimport/domain/core"
	"sheetimport/domain/grid"
	"sheetimport/internal"

	"golang.org/x/sync/singleflight"
)

var resolverLog = internal.DefaultLogger.With("Resolver")

// Resolution is the outcome of resolving a share link. Exactly one of Grid
// or Tabs is set; NeedsTabSelection is true when the caller must pick a tab.
type Resolution struct {
	Document          DocumentRef `json:"-"`
	Grid              *grid.RawGrid
	Tabs              []grid.Tab
	NeedsTabSelection bool
	TabID             int
}

// WorkbookCache holds the most recently fetched workbook, keyed by document id.
// Storing a different document discards the previous entry.
type WorkbookCache struct {
	mu    sync.Mutex
	docID core.DocumentID
	wb    *excel.Workbook
}

// NewWorkbookCache creates an empty cache
func NewWorkbookCache() *WorkbookCache {
	return &WorkbookCache{}
}

// Get returns the cached workbook for id
func (c *WorkbookCache) Get(id core.DocumentID) (*excel.Workbook, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wb == nil || c.docID != id {
		return nil, false
	}
	return c.wb, true
}

// Put stores wb as the single cached entry
func (c *WorkbookCache) Put(id core.DocumentID, wb *excel.Workbook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docID = id
	c.wb = wb
}

// Invalidate drops the cached entry
func (c *WorkbookCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docID = ""
	c.wb = nil
}

// Resolver turns share links into RawGrids, fetching each document at most
// once while it stays cached
type Resolver struct {
	client *Client
	reader *excel.Reader
	cache  *WorkbookCache
	group  singleflight.Group
}

// NewResolver creates a remote spreadsheet resolver with its own cache
func NewResolver(client *Client, reader *excel.Reader) *Resolver {
	return &Resolver{
		client: client,
		reader: reader,
		cache:  NewWorkbookCache(),
	}
}

// Resolve fetches the document behind rawURL. An explicit tab is fetched on
// its own; otherwise the whole workbook is fetched and either its single tab
// is returned or the tab list is returned for selection.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	ref, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if ref.HasTab() {
		data, err := r.client.FetchTab(ctx, ref, *ref.TabID)
		if err != nil {
			return nil, err
		}
		g, err := r.reader.ReadGrid(data, grid.FormatCSV)
		if err != nil {
			return nil, err
		}
		resolverLog.Info("resolved tab %d of %s (%d rows)", *ref.TabID, ref.ID, len(g.Rows))
		return &Resolution{Document: ref, Grid: g, TabID: *ref.TabID}, nil
	}

	wb, err := r.workbook(ctx, ref)
	if err != nil {
		return nil, err
	}

	tabs := wb.Tabs()
	switch len(tabs) {
	case 0:
		return nil, core.NewUnreadableSourceError("workbook has no sheets", nil)
	case 1:
		g, err := wb.Grid(tabs[0].ID)
		if err != nil {
			return nil, err
		}
		return &Resolution{Document: ref, Grid: g, TabID: tabs[0].ID}, nil
	default:
		resolverLog.Info("document %s has %d tabs, awaiting selection", ref.ID, len(tabs))
		return &Resolution{Document: ref, Tabs: tabs, NeedsTabSelection: true}, nil
	}
}

// SelectTab returns the grid of one tab, served from the cache unless the
// cache was invalidated since Resolve
func (r *Resolver) SelectTab(ctx context.Context, ref DocumentRef, tabID int) (*grid.RawGrid, error) {
	wb, err := r.workbook(ctx, ref)
	if err != nil {
		return nil, err
	}
	return wb.Grid(tabID)
}

// Invalidate drops the cached workbook
func (r *Resolver) Invalidate() {
	r.cache.Invalidate()
}

// workbook returns the cached workbook or fetches it, with at most one fetch
// in flight per document id
func (r *Resolver) workbook(ctx context.Context, ref DocumentRef) (*excel.Workbook, error) {
	if wb, ok := r.cache.Get(ref.ID); ok {
		resolverLog.Debug("cache hit for %s", ref.ID)
		return wb, nil
	}

	v, err, shared := r.group.Do(ref.ID.String(), func() (interface{}, error) {
		if wb, ok := r.cache.Get(ref.ID); ok {
			return wb, nil
		}
		data, err := r.client.FetchWorkbook(ctx, ref)
		if err != nil {
			return nil, err
		}
		wb, err := r.reader.ReadWorkbook(data)
		if err != nil {
			return nil, err
		}
		// A fetch cancelled after the body arrived still leaves no state behind
		if ctx.Err() != nil {
			return nil, classifyTransportError(ctx, ctx.Err())
		}
		r.cache.Put(ref.ID, wb)
		return wb, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref.ID, err)
	}
	if shared {
		resolverLog.Debug("joined in-flight fetch for %s", ref.ID)
	}
	return v.(*excel.Workbook), nil
}
