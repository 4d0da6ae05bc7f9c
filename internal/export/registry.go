// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package export

import (
	"fmt"

	"github.com/tomtom215/activitylens/internal/logging"
	"github.com/tomtom215/activitylens/internal/models"
)

// fallbackFormats substitutes a simpler format when a rich renderer is
// unavailable: spreadsheet degrades to delimited text, document to
// structured data.
var fallbackFormats = map[string]string{
	models.FormatXLSX: models.FormatCSV,
	models.FormatPDF:  models.FormatJSON,
}

// Registry holds the available renderers keyed by format.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry builds a registry with all four standard renderers.
func NewRegistry() *Registry {
	r := &Registry{renderers: map[string]Renderer{}}
	r.Register(&CSVRenderer{})
	r.Register(&JSONRenderer{})
	r.Register(&XLSXRenderer{})
	r.Register(&PDFRenderer{})
	return r
}

// Register adds or replaces a renderer for its format.
func (r *Registry) Register(renderer Renderer) {
	r.renderers[renderer.Format()] = renderer
}

// Unregister removes a format's renderer, forcing fallback resolution.
func (r *Registry) Unregister(format string) {
	delete(r.renderers, format)
}

// Resolve returns the renderer for a format, following the fallback chain
// when the requested renderer is unavailable. Returns the format actually
// resolved alongside the renderer.
func (r *Registry) Resolve(format string) (Renderer, string, error) {
	seen := map[string]bool{}
	for current := format; !seen[current]; {
		seen[current] = true
		if renderer, ok := r.renderers[current]; ok {
			if current != format {
				logging.Warn().
					Str("requested", format).
					Str("resolved", current).
					Msg("Export format unavailable, using fallback")
			}
			return renderer, current, nil
		}
		next, ok := fallbackFormats[current]
		if !ok {
			break
		}
		current = next
	}
	return nil, "", models.NewValidationError(
		fmt.Sprintf("export format %q is not available", format), nil)
}
