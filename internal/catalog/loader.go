package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/terra-clan/graduate-survey/internal/models"
)

var (
	ErrNoCatalogs      = errors.New("no catalogs loaded")
	ErrUnknownLanguage = errors.New("unknown language")
)

// Loader manages loading and caching of per-language catalogs
type Loader struct {
	mu       sync.RWMutex
	catalogs map[string]*models.Catalog
}

// NewLoader creates a new catalog loader
func NewLoader() *Loader {
	return &Loader{
		catalogs: make(map[string]*models.Catalog),
	}
}

// LoadFromDir loads every YAML catalog in a directory.
// Files that fail validation are skipped with a warning; loading nothing is an error.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading catalogs from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load catalog", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("catalogs loaded", "count", loaded, "total_files", len(files))
	if loaded == 0 {
		return fmt.Errorf("%w in %s", ErrNoCatalogs, dir)
	}

	for _, problem := range l.CheckConsistency() {
		slog.Warn("catalog mismatch", "detail", problem)
	}
	return nil
}

// LoadFromFile loads a single catalog. The language defaults to the file name.
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	base := filepath.Base(path)
	c, err := Parse(data, strings.TrimSuffix(base, filepath.Ext(base)))
	if err != nil {
		return err
	}

	l.Add(c)
	slog.Info("catalog loaded", "language", c.Language, "questions", len(c.Questions), "sections", len(c.Sections))
	return nil
}

// Get retrieves a catalog by language
func (l *Loader) Get(lang string) (*models.Catalog, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.catalogs[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
	}
	return c, nil
}

// Languages returns the loaded languages in sorted order
func (l *Loader) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	langs := make([]string, 0, len(l.catalogs))
	for lang := range l.catalogs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Add programmatically adds a catalog, replacing any with the same language
func (l *Loader) Add(c *models.Catalog) {
	c.Index()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.catalogs[c.Language] = c
}

// CheckConsistency compares question ids and types across languages.
// Catalogs are declared independently, so drift is reported, not enforced.
func (l *Loader) CheckConsistency() []string {
	langs := l.Languages()
	if len(langs) < 2 {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var problems []string
	ref := l.catalogs[langs[0]]
	for _, lang := range langs[1:] {
		other := l.catalogs[lang]
		for _, q := range ref.Questions {
			oq := other.Question(q.ID)
			if oq == nil {
				problems = append(problems, fmt.Sprintf("%s missing in %s", q.ID, lang))
				continue
			}
			if oq.Type != q.Type {
				problems = append(problems, fmt.Sprintf("%s is %s in %s but %s in %s", q.ID, q.Type, ref.Language, oq.Type, lang))
			}
		}
		for _, q := range other.Questions {
			if ref.Question(q.ID) == nil {
				problems = append(problems, fmt.Sprintf("%s missing in %s", q.ID, ref.Language))
			}
		}
	}
	return problems
}
