package views

import (
	"context"
	"fmt"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
)

type MajorFetcher interface {
	Majors(ctx context.Context, faculty string) ([]academic.Major, error)
}

// MajorCascade keeps the major choices in sync with the selected faculty.
// When the API cannot be reached the built-in catalog is used so forms stay usable.
type MajorCascade struct {
	fetcher MajorFetcher
	logger  core.Logger

	Faculty  string
	Majors   []string
	Fallback bool // Majors come from the built-in catalog
}

func NewMajorCascade(fetcher MajorFetcher, logger core.Logger) *MajorCascade {
	return &MajorCascade{fetcher: fetcher, logger: logger}
}

// Select changes the faculty and returns its majors. The previous major choice is void.
func (c *MajorCascade) Select(ctx context.Context, faculty string) []string {
	c.Faculty = core.CleanString(faculty)
	c.Majors, c.Fallback = nil, false
	if c.Faculty == "" {
		return c.Majors
	}

	majors, err := c.fetcher.Majors(ctx, c.Faculty)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("fetching majors of %q, using built-in catalog: %v", c.Faculty, err))
		c.Majors, c.Fallback = FallbackMajors(c.Faculty), true
		return c.Majors
	}
	c.Majors = make([]string, 0, len(majors))
	for _, m := range majors {
		c.Majors = append(c.Majors, m.Name)
	}
	return c.Majors
}

// FallbackFaculties lists the faculties of the built-in catalog.
func FallbackFaculties() []string {
	faculties := make([]string, 0, len(academic.Catalog))
	for _, entry := range academic.Catalog {
		faculties = append(faculties, entry.Faculty)
	}
	return faculties
}

// FallbackMajors lists the majors of faculty in the built-in catalog.
func FallbackMajors(faculty string) []string {
	for _, entry := range academic.Catalog {
		if entry.Faculty == faculty {
			return append([]string(nil), entry.Majors...)
		}
	}
	return nil
}
