// Package directory loads project collaborator directories.
package directory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"sheetimport/domain/core"
	"sheetimport/domain/task"

	"github.com/tidwall/gjson"
)

// Provider serves collaborator directories from a parsed JSON document.
// The document is either one directory shared by every project or a
// "projects" object keyed by project id.
type Provider struct {
	shared   task.Directory
	projects map[string]task.Directory
}

// Static returns a provider serving dir for every project
func Static(dir task.Directory) *Provider {
	return &Provider{shared: dir}
}

// LoadFile reads a directory JSON file
func LoadFile(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	return Parse(data)
}

// Parse reads a directory document. Accepted shapes:
//
//	[{"id": "...", "name": "...", "email": "..."}]
//	{"owner": {...}, "collaborators": [...]}
//	{"projects": {"<project>": <either shape above>}}
func Parse(data []byte) (*Provider, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("directory is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	if projects := doc.Get("projects"); projects.IsObject() {
		p := &Provider{projects: make(map[string]task.Directory)}
		var err error
		projects.ForEach(func(key, value gjson.Result) bool {
			var dir task.Directory
			dir, err = parseDirectory(value)
			if err != nil {
				err = fmt.Errorf("project %q: %w", key.String(), err)
				return false
			}
			p.projects[key.String()] = dir
			return true
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	dir, err := parseDirectory(doc)
	if err != nil {
		return nil, err
	}
	return &Provider{shared: dir}, nil
}

func parseDirectory(v gjson.Result) (task.Directory, error) {
	var members []gjson.Result
	switch {
	case v.IsArray():
		members = v.Array()
	case v.IsObject():
		if owner := v.Get("owner"); owner.IsObject() {
			members = append(members, owner)
		}
		members = append(members, v.Get("collaborators").Array()...)
	default:
		return nil, fmt.Errorf("expected an array or an object with owner/collaborators")
	}

	dir := make(task.Directory, 0, len(members))
	seen := make(map[string]bool, len(members))
	for i, m := range members {
		c := task.Collaborator{
			PersonID:    core.PersonID(firstString(m, "id", "person_id", "personId")),
			DisplayName: strings.TrimSpace(firstString(m, "name", "display_name", "displayName")),
			Email:       strings.TrimSpace(m.Get("email").String()),
		}
		if c.DisplayName == "" && c.Email == "" {
			return nil, fmt.Errorf("member %d has neither name nor email", i)
		}
		if c.PersonID == "" {
			c.PersonID = core.PersonID(strings.ToLower(c.Email))
		}
		key := strings.ToLower(c.PersonID.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		dir = append(dir, c)
	}
	return dir, nil
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

// Directory returns the collaborators of projectID
func (p *Provider) Directory(ctx context.Context, projectID string) (task.Directory, error) {
	if p.projects == nil {
		return append(task.Directory(nil), p.shared...), nil
	}
	dir, ok := p.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: no directory for project %q", core.ErrNotFound, projectID)
	}
	return append(task.Directory(nil), dir...), nil
}
