package sheets

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"sheetimport/domain/core"
)

var documentPathPattern = regexp.MustCompile(`/spreadsheets/d/(e/)?([A-Za-z0-9_-]+)`)

// DocumentRef identifies a shared spreadsheet and, optionally, one of its tabs
type DocumentRef struct {
	ID        core.DocumentID
	Published bool
	TabID     *int
}

// HasTab reports whether the URL named an explicit tab
func (d DocumentRef) HasTab() bool {
	return d.TabID != nil
}

// ParseURL extracts the document id and an optional gid from a share link.
// The gid may appear in the query string or in the fragment.
func ParseURL(raw string) (DocumentRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DocumentRef{}, fmt.Errorf("%w: empty URL", core.ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return DocumentRef{}, fmt.Errorf("%w: %q", core.ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return DocumentRef{}, fmt.Errorf("%w: unsupported scheme %q", core.ErrInvalidURL, u.Scheme)
	}

	m := documentPathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return DocumentRef{}, fmt.Errorf("%w: no document id in %q", core.ErrInvalidURL, raw)
	}

	ref := DocumentRef{ID: core.DocumentID(m[2]), Published: m[1] != ""}

	gid := u.Query().Get("gid")
	if gid == "" && u.Fragment != "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			gid = frag.Get("gid")
		}
	}
	if gid != "" {
		n, err := strconv.Atoi(gid)
		if err != nil || n < 0 {
			return DocumentRef{}, fmt.Errorf("%w: invalid gid %q", core.ErrInvalidURL, gid)
		}
		ref.TabID = &n
	}

	return ref, nil
}
