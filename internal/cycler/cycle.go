package cycler

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// PhotoMediaType is the only media type eligible for publishing.
const PhotoMediaType = "image/jpeg"

// IsPhoto reports whether name looks like a publishable photo.
func IsPhoto(name string) bool {
	return mime.TypeByExtension(filepath.Ext(name)) == PhotoMediaType
}

// Candidates lists the photos currently in the source directory, sorted by name.
func (c *Cycler) Candidates() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("reading photos directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsPhoto(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}

// Cycle publishes one randomly chosen photo. It returns the chosen path and
// whether it was published. Failures end the cycle and are never returned.
func (c *Cycler) Cycle() (string, bool) {
	names, err := c.Candidates()
	if err != nil {
		c.logger.WithError(err).WithField("dir", c.dir).Debug("skipping cycle")
		c.metrics.ObserveCycleError(StageList)
		c.metrics.ObserveCycle(ResultError, 0)
		return "", false
	}

	if len(names) == 0 {
		c.logger.WithField("dir", c.dir).Debug("no photos to publish")
		c.metrics.ObserveCycle(ResultEmpty, 0)
		return "", false
	}

	src := filepath.Join(c.dir, names[c.pick(len(names))])
	if err := c.publisher.Publish(src); err != nil {
		c.logger.WithError(err).WithField("source", src).Error("failed to publish photo")
		c.metrics.ObserveCycleError(StagePublish)
		c.metrics.ObserveCycle(ResultError, len(names))
		return src, false
	}

	c.logger.WithFields(logrus.Fields{
		"source":     src,
		"candidates": len(names),
	}).Debug("published photo")
	c.metrics.ObserveCycle(ResultPublished, len(names))

	return src, true
}

func (c *Cycler) pick(n int) int {
	c.randMu.Lock()
	defer c.randMu.Unlock()

	return c.rand.IntN(n)
}
