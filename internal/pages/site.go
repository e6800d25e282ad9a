package pages

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/starford/warpboard/internal/apperr"
)

// Change kinds reported by Site.Sync and Watch.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Site is the route table of every page in a Dir. It is safe for
// concurrent use.
type Site struct {
	dir    *Dir
	logger *slog.Logger

	mu      sync.RWMutex
	byPath  map[string]*Page
	byRoute map[string]*Page
}

// NewSite loads every page in dir.
func NewSite(dir *Dir, logger *slog.Logger) (*Site, error) {
	s := &Site{
		dir:     dir,
		logger:  logger,
		byPath:  make(map[string]*Page),
		byRoute: make(map[string]*Page),
	}
	if _, err := s.Sync(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory the site is loaded from.
func (s *Site) Dir() *Dir { return s.dir }

// Lookup returns the page answering route.
func (s *Site) Lookup(route string) (*Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byRoute[route]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", route, apperr.ErrNotFound)
	}
	return p, nil
}

// Pages returns every page sorted by route.
func (s *Site) Pages() []*Page {
	s.mu.RLock()
	out := make([]*Page, 0, len(s.byPath))
	for _, p := range s.byPath {
		out = append(out, p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// FailsDelete reports whether any page marks alert id as failing.
func (s *Site) FailsDelete(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.byPath {
		if p.FailsDelete(id) {
			return true
		}
	}
	return false
}

// Refresh re-reads the page file at rel. It returns KindCreated or
// KindUpdated, or "" when the content did not change.
func (s *Site) Refresh(rel string) (string, error) {
	data, err := s.dir.Read(rel)
	if err != nil {
		return "", err
	}
	p := Parse(rel, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byPath[rel]
	if ok && old.Checksum == p.Checksum {
		return "", nil
	}
	if ok && s.byRoute[old.Route] == old {
		delete(s.byRoute, old.Route)
		s.promote(old.Route, rel)
	}
	if clash, taken := s.byRoute[p.Route]; taken && clash.Path != rel {
		s.logger.Warn("pages: route served by two files",
			slog.String("route", p.Route),
			slog.String("kept", clash.Path),
			slog.String("ignored", rel))
		s.byPath[rel] = p
		return KindUpdated, nil
	}
	s.byPath[rel] = p
	s.byRoute[p.Route] = p
	if ok {
		return KindUpdated, nil
	}
	return KindCreated, nil
}

// Remove drops the page file at rel. It reports whether it was loaded.
func (s *Site) Remove(rel string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byPath[rel]
	if !ok {
		return false
	}
	delete(s.byPath, rel)
	if s.byRoute[p.Route] == p {
		delete(s.byRoute, p.Route)
		s.promote(p.Route, rel)
	}
	return true
}

// promote hands route to the remaining file with the smallest path that
// declares it, skipping except. Callers hold s.mu.
func (s *Site) promote(route, except string) {
	var next *Page
	for rel, p := range s.byPath {
		if rel == except || p.Route != route {
			continue
		}
		if next == nil || rel < next.Path {
			next = p
		}
	}
	if next != nil {
		s.byRoute[route] = next
		s.logger.Info("pages: route handed over",
			slog.String("route", route),
			slog.String("path", next.Path))
	}
}

// Change is one page file that Sync added, changed or dropped.
type Change struct {
	Kind string
	Path string
}

// Sync reconciles the site with the directory: files that vanished are
// dropped and new or changed files are loaded.
func (s *Site) Sync() ([]Change, error) {
	metas, err := s.dir.List()
	if err != nil {
		return nil, err
	}
	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	s.mu.RLock()
	loaded := make(map[string]string, len(s.byPath))
	for p, page := range s.byPath {
		loaded[p] = page.Checksum
	}
	s.mu.RUnlock()

	var changes []Change
	for p := range loaded {
		if _, ok := disk[p]; !ok && s.Remove(p) {
			changes = append(changes, Change{Kind: KindDeleted, Path: p})
		}
	}
	for _, m := range metas {
		if loaded[m.Path] == m.Checksum {
			continue
		}
		kind, err := s.Refresh(m.Path)
		if err != nil {
			s.logger.Warn("pages: load failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		if kind != "" {
			changes = append(changes, Change{Kind: kind, Path: m.Path})
		}
	}
	return changes, nil
}
