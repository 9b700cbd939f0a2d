package cycler

import (
	"context"
	"fmt"

	"github.com/photo-cycler/backend/internal/models"
	"github.com/photo-cycler/backend/internal/thing"
)

const (
	ThingID            = "urn:dev:ops:photo-cycler"
	ThingTitle         = "Photo Cycler"
	UpdateRateProperty = "updateRate"
	ImageProperty      = "image"
)

// NewThing exposes c as a thing with a writable update rate and a read-only
// image whose content lives at imageHref.
func NewThing(c *Cycler, imageHref, uiHref string) *thing.Thing {
	t := thing.New(ThingID, ThingTitle, ThingTitle)
	t.UIHref = uiHref

	t.AddProperty(thing.NewProperty(UpdateRateProperty, models.PropertyMetadata{
		Type:        "number",
		Title:       "Update Rate",
		Description: "Photo cycle rate",
		Unit:        "second",
		Minimum:     models.Float(0),
	}, func() interface{} {
		return c.Interval()
	}, func(ctx context.Context, value interface{}) error {
		seconds, ok := value.(float64)
		if !ok {
			return fmt.Errorf("%w: %v", thing.ErrInvalidValue, value)
		}
		return c.ConfigureInterval(ctx, seconds)
	}))

	t.AddProperty(thing.NewProperty(ImageProperty, models.PropertyMetadata{
		AtType:      "ImageProperty",
		Type:        "null",
		Title:       "Image",
		Description: "Current image",
		ReadOnly:    true,
		Links: []models.Link{{
			Rel:       "alternate",
			Href:      imageHref,
			MediaType: PhotoMediaType,
		}},
	}, func() interface{} {
		return nil
	}, nil))

	return t
}
