// Package render declares the report renderer boundary. Renderers consume a
// finalized version's content and produce bytes; they must not mutate the
// content or feed anything back into computation.
package render

import (
	"context"

	"github.com/finhelm/taxengine/internal/report"
)

// Format selects the output medium.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatXML  Format = "xml"
)

// Theme carries optional tenant branding for the renderer.
type Theme struct {
	TenantID    string `json:"tenant_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	AccentColor string `json:"accent_color,omitempty"`
}

// Renderer turns a report version into presentation bytes.
type Renderer interface {
	// Render must treat version.Content as read-only.
	Render(ctx context.Context, version *report.ReportVersion, theme *Theme, format Format) ([]byte, error)
}
