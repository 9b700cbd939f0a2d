// Package thing implements a minimal networked thing: an identity plus a set
// of typed properties that remote clients read, write and subscribe to.
package thing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/photo-cycler/backend/internal/models"
)

// DefaultContext is the @context of every thing description.
const DefaultContext = "https://webthings.io/schemas"

const subscriberBuffer = 16

// Thing groups properties under one identity.
type Thing struct {
	ID          string
	Title       string
	Description string
	Types       []string
	UIHref      string

	properties []*Property
	byName     map[string]*Property

	mu          sync.Mutex
	subscribers map[chan models.PropertyStatus]struct{}
}

// New creates a thing with no properties.
func New(id, title, description string) *Thing {
	return &Thing{
		ID:          id,
		Title:       title,
		Description: description,
		Types:       []string{},
		byName:      make(map[string]*Property),
		subscribers: make(map[chan models.PropertyStatus]struct{}),
	}
}

// AddProperty registers p. Names must be unique.
func (t *Thing) AddProperty(p *Property) {
	if _, exists := t.byName[p.Name]; exists {
		panic(fmt.Sprintf("thing: duplicate property %q", p.Name))
	}
	t.properties = append(t.properties, p)
	t.byName[p.Name] = p
}

// Property looks up a property by name.
func (t *Thing) Property(name string) (*Property, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// Values returns the current value of every property.
func (t *Thing) Values() models.PropertyStatus {
	values := make(models.PropertyStatus, len(t.properties))
	for _, p := range t.properties {
		values[p.Name] = p.Value()
	}
	return values
}

// SetProperty validates value against the property's metadata, applies it and
// notifies subscribers. It returns the value as stored.
func (t *Thing) SetProperty(ctx context.Context, name string, value interface{}) (interface{}, error) {
	p, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	validated, err := p.Validate(value)
	if err != nil {
		return nil, err
	}

	if err := p.set(ctx, validated); err != nil {
		return nil, err
	}

	current := p.Value()
	t.notify(models.PropertyStatus{name: current})

	return current, nil
}

// Subscribe returns a channel receiving a status for every accepted write.
// Slow subscribers drop updates. The returned func unsubscribes.
func (t *Thing) Subscribe() (<-chan models.PropertyStatus, func()) {
	ch := make(chan models.PropertyStatus, subscriberBuffer)

	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subscribers, ch)
			t.mu.Unlock()
			close(ch)
		})
	}
}

func (t *Thing) notify(status models.PropertyStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ch := range t.subscribers {
		select {
		case ch <- status:
		default:
		}
	}
}

// Describe builds the thing description. base is the externally visible
// origin, such as "http://localhost:8888", and may be empty.
func (t *Thing) Describe(base string) models.ThingDescription {
	props := make(map[string]models.PropertyMetadata, len(t.properties))
	for _, p := range t.properties {
		meta := p.Metadata
		links := []models.Link{{Rel: "property", Href: "/properties/" + p.Name}}
		meta.Links = append(links, meta.Links...)
		props[p.Name] = meta
	}

	links := []models.Link{
		{Rel: "properties", Href: "/properties"},
	}
	if t.UIHref != "" {
		links = append(links, models.Link{Rel: "alternate", MediaType: "text/html", Href: t.UIHref})
	}
	if ws := websocketURL(base); ws != "" {
		links = append(links, models.Link{Rel: "alternate", Href: ws})
	}

	return models.ThingDescription{
		Context:     DefaultContext,
		Type:        t.Types,
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Properties:  props,
		Links:       links,
		Base:        base,
		SecurityDefinitions: map[string]models.SecurityScheme{
			"nosec_sc": {Scheme: "nosec"},
		},
		Security: "nosec_sc",
	}
}

func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return ""
}
