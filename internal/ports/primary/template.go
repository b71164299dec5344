package primary

import (
	"context"
	"time"
)

// TemplateService defines the primary port for versioned checklist templates.
type TemplateService interface {
	// CreateVersion creates the next active version for a category, deactivating the prior one.
	CreateVersion(ctx context.Context, req CreateTemplateRequest) (*Template, error)

	// GetActive returns the active template for a category, or nil when none exists.
	GetActive(ctx context.Context, category string) (*Template, error)

	// GetTemplate retrieves a template by ID.
	GetTemplate(ctx context.Context, templateID string) (*Template, error)

	// ListTemplates lists templates ordered by category, newest version first.
	ListTemplates(ctx context.Context, search string) ([]*Template, error)

	// ListVersions lists every version of a category, newest first.
	ListVersions(ctx context.Context, category string) ([]*Template, error)

	// ImportFile reads a YAML template definition and creates a new version from it.
	ImportFile(ctx context.Context, path, createdBy string) (*Template, error)
}

// CreateTemplateRequest contains parameters for creating a template version.
type CreateTemplateRequest struct {
	Name      string
	Category  string
	Items     []TemplateItem
	CreatedBy string
}

// TemplateItem is one requirement line of a template.
type TemplateItem struct {
	Label    string
	Required bool
	Hint     string
}

// Template represents a checklist template version at the port boundary.
type Template struct {
	ID        string
	Name      string
	Category  string
	Version   int
	Active    bool
	CreatedBy string
	CreatedAt time.Time
	Items     []TemplateItem // empty in list results
}
