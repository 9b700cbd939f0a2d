package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/photo-cycler/backend/internal/models"
)

// DefaultLinkName is the file name the current photo is published under.
const DefaultLinkName = "current.jpg"

// Publisher makes a source photo the current one.
type Publisher interface {
	Publish(src string) error
	Current() (models.Publication, bool)
}

// LinkPublisher implements Publisher with a symlink in the static directory.
// The link is replaced by renaming a freshly created link over it, so readers
// of the static directory never observe it missing once it exists.
type LinkPublisher struct {
	mu        sync.RWMutex
	staticDir string
	name      string
	current   *models.Publication
	now       func() time.Time
}

// NewLinkPublisher creates a LinkPublisher, creating staticDir if needed.
func NewLinkPublisher(staticDir, name string) (*LinkPublisher, error) {
	if err := os.MkdirAll(staticDir, 0755); err != nil {
		return nil, fmt.Errorf("creating static directory: %w", err)
	}
	if name == "" {
		name = DefaultLinkName
	}

	return &LinkPublisher{
		staticDir: staticDir,
		name:      name,
		now:       time.Now,
	}, nil
}

// LinkPath returns the absolute path of the published link.
func (p *LinkPublisher) LinkPath() string {
	return filepath.Join(p.staticDir, p.name)
}

// Publish points the link at src.
func (p *LinkPublisher) Publish(src string) error {
	target, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("resolving source: %w", err)
	}

	tmp := filepath.Join(p.staticDir, fmt.Sprintf(".%s-%s.tmp", p.name, uuid.New().String()))
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("creating link: %w", err)
	}

	if err := os.Rename(tmp, p.LinkPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing link: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &models.Publication{
		Source:      target,
		PublishedAt: p.now(),
	}

	return nil
}

// Current returns the last successful publication.
func (p *LinkPublisher) Current() (models.Publication, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return models.Publication{}, false
	}
	return *p.current, true
}
