// Package templates loads the campaign starting-point library from disk.
// A template file holds a partial Campaign in YAML; the default template
// supplies base copy and theme, and named templates override on top.
package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"campaignkit/internal/models"
)

// ErrTemplateNotFound signals a named template has no file on disk.
var ErrTemplateNotFound = errors.New("campaign template not found")

// Template is one starting point for a new campaign.
type Template struct {
	Name        string                `yaml:"name"`
	Description string                `yaml:"description,omitempty"`
	Mode        models.Mode           `yaml:"mode,omitempty"`
	Welcome     *models.WelcomeScreen `yaml:"welcome,omitempty"`
	Contact     *models.ContactScreen `yaml:"contact,omitempty"`
	Questions   []models.Question     `yaml:"questions,omitempty"`
	Wheel       *models.WheelConfig   `yaml:"wheel,omitempty"`
	Article     *models.ArticleConfig `yaml:"article,omitempty"`
	Ending      *models.EndingScreen  `yaml:"ending,omitempty"`
	Theme       *models.Theme         `yaml:"theme,omitempty"`
}

// Loader reads template YAML files and merges default <- named.
type Loader struct {
	baseDir string

	mu    sync.RWMutex
	cache map[string]Template
}

// NewLoader creates a template loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		baseDir: baseDir,
		cache:   make(map[string]Template),
	}
}

func (l *Loader) defaultPath() string {
	return filepath.Join(l.baseDir, "templates", "default.yaml")
}

func (l *Loader) namedPath(name string) string {
	return filepath.Join(l.baseDir, "templates", name+".yaml")
}

// Load returns the template for name, merged over the default template.
// An empty name returns the default alone. A missing default file is
// fine; a missing named file is ErrTemplateNotFound.
func (l *Loader) Load(name string) (Template, error) {
	key := name
	if key == "" {
		key = "$default"
	}
	l.mu.RLock()
	if t, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return t, nil
	}
	l.mu.RUnlock()

	def, err := readTemplate(l.defaultPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Template{}, fmt.Errorf("read default template: %w", err)
	}

	merged := def
	if name != "" {
		named, err := readTemplate(l.namedPath(name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
			}
			return Template{}, fmt.Errorf("read template %s: %w", name, err)
		}
		merged = mergeTemplate(def, named)
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears the cache, e.g. after template files change on disk.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]Template)
}

func readTemplate(path string) (Template, error) {
	var t Template
	b, err := os.ReadFile(path)
	if err != nil {
		return Template{}, err
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Template{}, err
	}
	return t, nil
}

// mergeTemplate overlays b on a: non-zero/non-nil fields of b win,
// slices replace wholesale when provided.
func mergeTemplate(a, b Template) Template {
	out := a
	if b.Name != "" {
		out.Name = b.Name
	}
	if b.Description != "" {
		out.Description = b.Description
	}
	if b.Mode != "" {
		out.Mode = b.Mode
	}
	if b.Welcome != nil {
		w := *b.Welcome
		out.Welcome = &w
	}
	if b.Contact != nil {
		c := *b.Contact
		out.Contact = &c
	}
	if len(b.Questions) > 0 {
		out.Questions = append([]models.Question(nil), b.Questions...)
	}
	if b.Wheel != nil {
		w := *b.Wheel
		out.Wheel = &w
	}
	if b.Article != nil {
		ar := *b.Article
		out.Article = &ar
	}
	if b.Ending != nil {
		e := *b.Ending
		out.Ending = &e
	}
	if b.Theme != nil {
		t := *b.Theme
		out.Theme = &t
	}
	return out
}

// Apply seeds a new campaign from the template. Sequence items get fresh
// ids so two campaigns started from one template never share them.
func (t Template) Apply(c models.Campaign) models.Campaign {
	if t.Mode != "" && c.Mode == "" {
		c.Mode = t.Mode
	}
	if t.Welcome != nil {
		c.Welcome = *t.Welcome
	}
	if t.Contact != nil {
		contact := *t.Contact
		contact.Fields = make([]models.ContactField, len(t.Contact.Fields))
		for i, f := range t.Contact.Fields {
			contact.Fields[i] = f.CloneFresh().WithNumber(i + 1)
		}
		c.Contact = contact
	}
	if len(t.Questions) > 0 {
		c.Questions = make([]models.Question, len(t.Questions))
		for i, q := range t.Questions {
			c.Questions[i] = q.CloneFresh().WithNumber(i + 1)
		}
	}
	if t.Wheel != nil {
		w := *t.Wheel
		w.Segments = make([]models.Segment, len(t.Wheel.Segments))
		for i, s := range t.Wheel.Segments {
			w.Segments[i] = s.CloneFresh()
		}
		w.Prizes = append([]models.Prize(nil), t.Wheel.Prizes...)
		c.Wheel = &w
	}
	if t.Article != nil {
		a := *t.Article
		c.Article = &a
	}
	if t.Ending != nil {
		c.Ending = *t.Ending
	}
	if t.Theme != nil {
		c.Theme = *t.Theme
	}
	return c
}
