package thing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-cycler/backend/internal/models"
)

func newTestThing() (*Thing, *float64) {
	rate := 5.0
	th := New("urn:dev:ops:test", "Test", "A test thing")
	th.AddProperty(NewProperty("rate", models.PropertyMetadata{
		Type:    "number",
		Minimum: models.Float(0),
		Maximum: models.Float(100),
	}, func() interface{} { return rate }, func(_ context.Context, v interface{}) error {
		rate = v.(float64)
		return nil
	}))
	th.AddProperty(NewProperty("count", models.PropertyMetadata{Type: "integer"},
		func() interface{} { return 1 }, func(context.Context, interface{}) error { return nil }))
	th.AddProperty(NewProperty("image", models.PropertyMetadata{Type: "null"},
		func() interface{} { return nil }, nil))
	return th, &rate
}

func TestThing_SetProperty(t *testing.T) {
	ctx := context.Background()

	t.Run("applies valid number", func(t *testing.T) {
		th, rate := newTestThing()
		v, err := th.SetProperty(ctx, "rate", 10.5)
		require.NoError(t, err)
		assert.Equal(t, 10.5, v)
		assert.Equal(t, 10.5, *rate)
	})

	t.Run("accepts json.Number", func(t *testing.T) {
		th, rate := newTestThing()
		_, err := th.SetProperty(ctx, "rate", json.Number("3"))
		require.NoError(t, err)
		assert.Equal(t, 3.0, *rate)
	})

	t.Run("accepts minimum", func(t *testing.T) {
		th, rate := newTestThing()
		_, err := th.SetProperty(ctx, "rate", 0.0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, *rate)
	})

	t.Run("rejects below minimum", func(t *testing.T) {
		th, rate := newTestThing()
		_, err := th.SetProperty(ctx, "rate", -1.0)
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.Equal(t, 5.0, *rate)
	})

	t.Run("rejects above maximum", func(t *testing.T) {
		th, _ := newTestThing()
		_, err := th.SetProperty(ctx, "rate", 101.0)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("rejects non-number", func(t *testing.T) {
		th, _ := newTestThing()
		_, err := th.SetProperty(ctx, "rate", "fast")
		assert.ErrorIs(t, err, ErrInvalidValue)
		_, err = th.SetProperty(ctx, "rate", nil)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("rejects fractional integer", func(t *testing.T) {
		th, _ := newTestThing()
		_, err := th.SetProperty(ctx, "count", 1.5)
		assert.ErrorIs(t, err, ErrInvalidValue)
		_, err = th.SetProperty(ctx, "count", 2.0)
		assert.NoError(t, err)
	})

	t.Run("rejects read-only", func(t *testing.T) {
		th, _ := newTestThing()
		_, err := th.SetProperty(ctx, "image", nil)
		assert.ErrorIs(t, err, ErrReadOnly)
	})

	t.Run("rejects unknown", func(t *testing.T) {
		th, _ := newTestThing()
		_, err := th.SetProperty(ctx, "missing", 1.0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("propagates setter error", func(t *testing.T) {
		th := New("id", "title", "")
		boom := errors.New("boom")
		th.AddProperty(NewProperty("x", models.PropertyMetadata{Type: "number"},
			func() interface{} { return 0.0 }, func(context.Context, interface{}) error { return boom }))
		_, err := th.SetProperty(ctx, "x", 1.0)
		assert.ErrorIs(t, err, boom)
	})
}

func TestThing_Subscribe(t *testing.T) {
	th, _ := newTestThing()
	updates, cancel := th.Subscribe()
	defer cancel()

	_, err := th.SetProperty(context.Background(), "rate", 8.0)
	require.NoError(t, err)

	select {
	case status := <-updates:
		assert.Equal(t, models.PropertyStatus{"rate": 8.0}, status)
	default:
		t.Fatal("expected a property status")
	}

	// Rejected writes are not broadcast.
	_, err = th.SetProperty(context.Background(), "rate", -8.0)
	require.Error(t, err)
	assert.Len(t, updates, 0)

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open)
}

func TestThing_Values(t *testing.T) {
	th, _ := newTestThing()
	assert.Equal(t, models.PropertyStatus{"rate": 5.0, "count": 1, "image": nil}, th.Values())
}

func TestThing_Describe(t *testing.T) {
	th, _ := newTestThing()
	th.UIHref = "/static/index.html"

	td := th.Describe("http://localhost:8888")

	assert.Equal(t, "urn:dev:ops:test", td.ID)
	assert.Equal(t, DefaultContext, td.Context)
	assert.Equal(t, "nosec_sc", td.Security)
	require.Contains(t, td.Properties, "image")
	assert.True(t, td.Properties["image"].ReadOnly)
	assert.False(t, td.Properties["rate"].ReadOnly)
	assert.Equal(t, "/properties/rate", td.Properties["rate"].Links[0].Href)
	assert.Contains(t, td.Links, models.Link{Rel: "alternate", MediaType: "text/html", Href: "/static/index.html"})
	assert.Contains(t, td.Links, models.Link{Rel: "alternate", Href: "ws://localhost:8888"})

	raw, err := json.Marshal(td)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"@context":"https://webthings.io/schemas"`)
	assert.Contains(t, string(raw), `"minimum":0`)
}

func TestThing_DuplicateProperty(t *testing.T) {
	th, _ := newTestThing()
	assert.Panics(t, func() {
		th.AddProperty(NewProperty("rate", models.PropertyMetadata{Type: "number"}, nil, nil))
	})
}
