// Package api exposes import sessions over HTTP.
package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"sheetimport/app"
	"sheetimport/domain/core"
	"sheetimport/domain/grid"
	"sheetimport/domain/task"
	"sheetimport/internal/errors"
	"sheetimport/internal/mapping"
	"sheetimport/internal/session"
	"sheetimport/ports"

	"github.com/gin-gonic/gin"
)

const sampleRows = 5

// HandlerConfig holds the request limits of the import API
type HandlerConfig struct {
	MaxUploadBytes int64
	FetchTimeout   time.Duration
}

// ImportHandler serves the import workflow of each session
type ImportHandler struct {
	sessions *session.Manager
	hub      *SSEHub
	tasks    ports.TaskStore
	notifier ports.Notifier
	config   HandlerConfig
}

// NewImportHandler creates the handler. notifier may be nil, in which case
// confirmed notifications are dropped.
func NewImportHandler(sessions *session.Manager, hub *SSEHub, tasks ports.TaskStore, notifier ports.Notifier, config HandlerConfig) *ImportHandler {
	return &ImportHandler{
		sessions: sessions,
		hub:      hub,
		tasks:    tasks,
		notifier: notifier,
		config:   config,
	}
}

// RegisterRoutes mounts the import API on r
func (h *ImportHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/imports", h.HandleCreate())

	imports := r.Group("/api/imports/:id", LoadSession(h.sessions))
	{
		imports.GET("", h.HandleGet())
		imports.DELETE("", h.HandleDelete())
		imports.POST("/reset", h.HandleReset())
		imports.POST("/file", h.HandleUpload())
		imports.POST("/url", h.HandleURL())
		imports.POST("/tab", h.HandleSelectTab())
		imports.GET("/mapping", h.HandleGetMapping())
		imports.PUT("/mapping", h.HandleReplaceMapping())
		imports.PUT("/mapping/:field", h.HandleSetColumn())
		imports.DELETE("/mapping/:field", h.HandleClearColumn())
		imports.POST("/mapping/auto", h.HandleAutoMap())
		imports.POST("/mapping/confirm", h.HandleConfirmMapping())
		imports.GET("/preview", h.HandlePreview())
		imports.POST("/preview/back", h.HandleBackToMapping())
		imports.POST("/preview/confirm", h.HandleConfirmPreview())
		imports.GET("/notifications", h.HandleNotifications())
		imports.POST("/notifications/confirm", h.HandleConfirmNotifications())
		imports.POST("/commit", h.HandleCommit())
		imports.GET("/events", h.HandleEvents())
	}
}

type sessionResponse struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	State     app.State  `json:"state"`
	Source    string     `json:"source,omitempty"`
	Tabs      []grid.Tab `json:"tabs,omitempty"`
	Committed int        `json:"committed"`
}

func describe(s *session.Session, p *app.ImportPipeline) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID.String(),
		ProjectID: s.ProjectID,
		State:     p.State(),
		Source:    p.SourceName(),
		Committed: len(p.Committed()),
	}
	if p.State() == app.StateTabSelection {
		resp.Tabs = p.Tabs()
	}
	return resp
}

// abortWithError renders err as {"error","code"} with the status of its code
func abortWithError(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	body := gin.H{"error": err.Error(), "code": appErr.Code}

	var itemErr *core.CommitItemFailedError
	if stderrors.As(err, &itemErr) {
		body["succeeded"] = itemErr.Succeeded
		body["failed_index"] = itemErr.Index
		body["failed_title"] = itemErr.Title
	}
	c.AbortWithStatusJSON(errors.HTTPStatus(appErr.Code), body)
}

// mutate runs fn on the session pipeline and answers with the new state
func (h *ImportHandler) mutate(c *gin.Context, op string, fn func(p *app.ImportPipeline) error) {
	s := currentSession(c)
	var resp sessionResponse
	err := s.Do(func(p *app.ImportPipeline) error {
		err := fn(p)
		resp = describe(s, p)
		return err
	})
	if err != nil {
		log.Printf("[API] %s on %s failed: %v", op, s.ID, err)
		abortWithError(c, err)
		return
	}
	h.hub.Broadcast(ProgressEvent{SessionID: s.ID.String(), EventType: EventState, State: string(resp.State)})
	c.JSON(http.StatusOK, resp)
}

// view runs fn on the session pipeline without changing its state
func view(c *gin.Context, fn func(p *app.ImportPipeline) (any, error)) {
	s := currentSession(c)
	var body any
	err := s.Do(func(p *app.ImportPipeline) error {
		var err error
		body, err = fn(p)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *ImportHandler) HandleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ProjectID string `json:"project_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWithError(c, errors.InvalidInput("project_id is required"))
			return
		}

		s, err := h.sessions.Create(c.Request.Context(), body.ProjectID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		var resp sessionResponse
		_ = s.Do(func(p *app.ImportPipeline) error {
			resp = describe(s, p)
			return nil
		})
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *ImportHandler) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := currentSession(c)
		view(c, func(p *app.ImportPipeline) (any, error) {
			return describe(s, p), nil
		})
	}
}

func (h *ImportHandler) HandleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := currentSession(c)
		h.sessions.Delete(s.ID.String())
		log.Printf("[API] import %s deleted", s.ID)
		c.Status(http.StatusNoContent)
	}
}

func (h *ImportHandler) HandleReset() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mutate(c, "reset", func(p *app.ImportPipeline) error {
			p.Reset()
			return nil
		})
	}
}

func (h *ImportHandler) HandleUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes)
		fh, err := c.FormFile("file")
		if err != nil {
			abortWithError(c, errors.InvalidInput(fmt.Sprintf("multipart field \"file\" is required: %v", err)))
			return
		}
		if fh.Size > h.config.MaxUploadBytes {
			abortWithError(c, errors.InvalidInput(fmt.Sprintf("file exceeds %d bytes", h.config.MaxUploadBytes)))
			return
		}

		f, err := fh.Open()
		if err != nil {
			abortWithError(c, core.NewUnreadableSourceError("cannot open upload", err))
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			abortWithError(c, core.NewUnreadableSourceError("cannot read upload", err))
			return
		}

		h.mutate(c, "load file", func(p *app.ImportPipeline) error {
			return p.LoadFile(data, fh.Filename)
		})
	}
}

func (h *ImportHandler) HandleURL() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			URL string `json:"url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWithError(c, errors.InvalidInput("url is required"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.FetchTimeout)
		defer cancel()
		h.mutate(c, "load url", func(p *app.ImportPipeline) error {
			return p.LoadURL(ctx, body.URL)
		})
	}
}

func (h *ImportHandler) HandleSelectTab() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			TabID *int `json:"tab_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWithError(c, errors.InvalidInput("tab_id is required"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.FetchTimeout)
		defer cancel()
		h.mutate(c, "select tab", func(p *app.ImportPipeline) error {
			return p.SelectTab(ctx, *body.TabID)
		})
	}
}

type mappingResponse struct {
	State      app.State              `json:"state"`
	Headers    []string               `json:"headers"`
	Mapping    task.ColumnMapping     `json:"mapping"`
	Fields     []mapping.MappedHeader `json:"fields"`
	Unmapped   []int                  `json:"unmapped"`
	Available  []task.FieldKey        `json:"available"`
	SampleRows [][]string             `json:"sample_rows"`
}

func (h *ImportHandler) HandleGetMapping() gin.HandlerFunc {
	return func(c *gin.Context) {
		view(c, func(p *app.ImportPipeline) (any, error) {
			g := p.Grid()
			if g == nil {
				return nil, core.NewTransitionError("view mapping", string(p.State()))
			}
			m := p.Mapping()
			rows := g.Rows
			if len(rows) > sampleRows {
				rows = rows[:sampleRows]
			}
			return mappingResponse{
				State:      p.State(),
				Headers:    g.Headers,
				Mapping:    m,
				Fields:     mapping.MappedHeaders(m, g.Headers),
				Unmapped:   mapping.Unmapped(m, g.Width()),
				Available:  task.AllFields(),
				SampleRows: rows,
			}, nil
		})
	}
}

func (h *ImportHandler) HandleReplaceMapping() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Mapping map[string]int `json:"mapping" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWithError(c, errors.InvalidInput("mapping object is required"))
			return
		}

		m, err := parseMapping(body.Mapping)
		if err != nil {
			abortWithError(c, err)
			return
		}
		h.mutate(c, "replace mapping", func(p *app.ImportPipeline) error {
			return p.ReplaceMapping(m)
		})
	}
}

// parseMapping validates field names and rejects a column claimed twice
func parseMapping(raw map[string]int) (task.ColumnMapping, error) {
	m := task.NewColumnMapping()
	owner := make(map[int]string, len(raw))
	for name, col := range raw {
		field, ok := task.ParseFieldKey(name)
		if !ok {
			return m, errors.InvalidInput(fmt.Sprintf("unknown field %q", name))
		}
		if other, taken := owner[col]; taken {
			return m, errors.InvalidInput(fmt.Sprintf("column %d mapped to both %q and %q", col, other, name))
		}
		owner[col] = name
		m.Set(field, col)
	}
	return m, nil
}

func fieldParam(c *gin.Context) (task.FieldKey, bool) {
	field, ok := task.ParseFieldKey(c.Param("field"))
	if !ok {
		abortWithError(c, errors.InvalidInput(fmt.Sprintf("unknown field %q", c.Param("field"))))
	}
	return field, ok
}

func (h *ImportHandler) HandleSetColumn() gin.HandlerFunc {
	return func(c *gin.Context) {
		field, ok := fieldParam(c)
		if !ok {
			return
		}
		var body struct {
			Column *int `json:"column" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWithError(c, errors.InvalidInput("column is required"))
			return
		}
		h.mutate(c, "set column", func(p *app.ImportPipeline) error {
			return p.SetColumn(field, *body.Column)
		})
	}
}

func (h *ImportHandler) HandleClearColumn() gin.HandlerFunc {
	return func(c *gin.Context) {
		field, ok := fieldParam(c)
		if !ok {
			return
		}
		h.mutate(c, "clear column", func(p *app.ImportPipeline) error {
			return p.ClearColumn(field)
		})
	}
}

func (h *ImportHandler) HandleAutoMap() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mutate(c, "auto map", (*app.ImportPipeline).AutoMap)
	}
}

func (h *ImportHandler) HandleConfirmMapping() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mutate(c, "confirm mapping", (*app.ImportPipeline).ConfirmMapping)
	}
}

type previewResponse struct {
	State       app.State           `json:"state"`
	Tasks       []task.ImportedTask `json:"tasks"`
	SkippedRows []int               `json:"skipped_rows"`
	Summary     app.PreviewSummary  `json:"summary"`
}

func (h *ImportHandler) HandlePreview() gin.HandlerFunc {
	return func(c *gin.Context) {
		view(c, func(p *app.ImportPipeline) (any, error) {
			res, summary, err := p.Preview()
			if err != nil {
				return nil, err
			}
			return previewResponse{
				State:       p.State(),
				Tasks:       res.Tasks,
				SkippedRows: res.SkippedRows,
				Summary:     summary,
			}, nil
		})
	}
}

func (h *ImportHandler) HandleBackToMapping() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mutate(c, "back to mapping", (*app.ImportPipeline).BackToMapping)
	}
}

func (h *ImportHandler) HandleConfirmPreview() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mutate(c, "confirm preview", (*app.ImportPipeline).ConfirmPreview)
	}
}

func (h *ImportHandler) HandleNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		view(c, func(p *app.ImportPipeline) (any, error) {
			if _, _, err := p.Preview(); err != nil {
				return nil, err
			}
			groups := p.NotificationGroups()
			if groups == nil {
				groups = []task.NotificationGroup{}
			}
			return gin.H{"state": p.State(), "groups": groups}, nil
		})
	}
}

func (h *ImportHandler) HandleConfirmNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Send *bool `json:"send" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWithError(c, errors.InvalidInput("send is required"))
			return
		}
		h.mutate(c, "confirm notifications", func(p *app.ImportPipeline) error {
			return p.ConfirmNotifications(*body.Send)
		})
	}
}

func (h *ImportHandler) HandleCommit() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := currentSession(c)
		id := s.ID.String()
		creator := h.tasks.ForProject(s.ProjectID)

		var (
			report *app.CommitReport
			state  app.State
		)
		err := s.Do(func(p *app.ImportPipeline) error {
			r, err := p.Commit(c.Request.Context(), creator, h.notifier, h.hub.ProgressFunc(c.Request.Context(), id))
			report, state = r, p.State()
			return err
		})
		if err != nil {
			appErr := errors.FromDomain(err)
			h.hub.Broadcast(ProgressEvent{SessionID: id, EventType: EventFailed, State: string(state), Error: err.Error(), Code: appErr.Code})
			abortWithError(c, err)
			return
		}

		h.hub.Broadcast(ProgressEvent{SessionID: id, EventType: EventDone, State: string(state)})
		c.JSON(http.StatusOK, gin.H{"state": state, "report": report})
	}
}

func (h *ImportHandler) HandleEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.hub.Stream(c, currentSession(c).ID.String())
	}
}
