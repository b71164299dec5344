package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/permitdesk/internal/core/checklist"
	"github.com/example/permitdesk/internal/core/effects"
	"github.com/example/permitdesk/internal/core/permit"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// TemplateServiceImpl implements the TemplateService interface.
type TemplateServiceImpl struct {
	base
	tx           secondary.Transactor
	templateRepo secondary.TemplateRepository
}

// NewTemplateService creates a new TemplateService with injected dependencies.
func NewTemplateService(
	tx secondary.Transactor,
	templateRepo secondary.TemplateRepository,
	opts ...Option,
) *TemplateServiceImpl {
	return &TemplateServiceImpl{
		base:         newBase(opts),
		tx:           tx,
		templateRepo: templateRepo,
	}
}

// CreateVersion creates the next active version for a category. The prior active
// version is deactivated in the same transaction.
func (s *TemplateServiceImpl) CreateVersion(ctx context.Context, req primary.CreateTemplateRequest) (*primary.Template, error) {
	items := make([]checklist.TemplateItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = checklist.TemplateItem{Label: item.Label, Required: item.Required, Hint: item.Hint}
	}

	verr := &domainerr.ValidationError{}
	if err := checklist.ValidateTemplate(req.Name, items); err != nil {
		var v *domainerr.ValidationError
		if errors.As(err, &v) {
			verr = v
		}
	}
	category, ok := permit.ParseCategory(req.Category)
	if !ok {
		verr.Add("category", fmt.Sprintf("unknown permit category %q", req.Category))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	items = checklist.Normalize(items)
	actor := s.actor(ctx, req.CreatedBy)

	var record *secondary.TemplateRecord
	err := s.withRetry(ctx, s.tx, "create template version", func(ctx context.Context) error {
		maxVersion, err := s.templateRepo.MaxVersion(ctx, string(category))
		if err != nil {
			return err
		}
		if _, err := s.templateRepo.DeactivateActive(ctx, string(category)); err != nil {
			return err
		}

		record = &secondary.TemplateRecord{
			ID:        s.newID(),
			Name:      req.Name,
			Category:  string(category),
			Version:   checklist.NextVersion(maxVersion),
			Active:    true,
			CreatedBy: actor,
			CreatedAt: s.clock(),
			Items:     make([]secondary.TemplateItemRecord, len(items)),
		}
		for i, item := range items {
			record.Items[i] = secondary.TemplateItemRecord{
				Position: i,
				Label:    item.Label,
				Required: item.Required,
				Hint:     item.Hint,
			}
		}
		return s.templateRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, translate(err, "template", string(category))
	}

	s.logger.Info("template version created",
		"category", record.Category, "version", record.Version, "items", len(record.Items))
	s.emit(ctx, effects.InvalidateEffect{Keys: []string{
		effects.EntityKey("template", record.Category),
		effects.ListKey("template"),
	}})

	return recordToTemplate(record), nil
}

// GetActive returns the active template for a category, or nil when none exists.
func (s *TemplateServiceImpl) GetActive(ctx context.Context, category string) (*primary.Template, error) {
	cat, ok := permit.ParseCategory(category)
	if !ok {
		return nil, domainerr.Validation("category", fmt.Sprintf("unknown permit category %q", category))
	}
	record, err := s.templateRepo.GetActive(ctx, string(cat))
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "template", string(cat))
	}
	return recordToTemplate(record), nil
}

// GetTemplate retrieves a template by ID.
func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, templateID string) (*primary.Template, error) {
	record, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, translate(err, "template", templateID)
	}
	return recordToTemplate(record), nil
}

// ListTemplates lists templates ordered by category, newest version first.
func (s *TemplateServiceImpl) ListTemplates(ctx context.Context, search string) ([]*primary.Template, error) {
	return s.list(ctx, secondary.TemplateFilters{Search: search})
}

// ListVersions lists every version of a category, newest first.
func (s *TemplateServiceImpl) ListVersions(ctx context.Context, category string) ([]*primary.Template, error) {
	cat, ok := permit.ParseCategory(category)
	if !ok {
		return nil, domainerr.Validation("category", fmt.Sprintf("unknown permit category %q", category))
	}
	return s.list(ctx, secondary.TemplateFilters{Category: string(cat)})
}

func (s *TemplateServiceImpl) list(ctx context.Context, filters secondary.TemplateFilters) ([]*primary.Template, error) {
	records, err := s.templateRepo.List(ctx, filters)
	if err != nil {
		return nil, translate(err, "templates", filters.Search)
	}
	templates := make([]*primary.Template, len(records))
	for i, r := range records {
		templates[i] = recordToTemplate(r)
	}
	return templates, nil
}

// templateFile is the on-disk YAML shape accepted by ImportFile.
type templateFile struct {
	Name     string                   `yaml:"name"`
	Category string                   `yaml:"category"`
	Items    []checklist.TemplateItem `yaml:"items"`
}

// ImportFile reads a YAML template definition and creates a new version from it.
func (s *TemplateServiceImpl) ImportFile(ctx context.Context, path, createdBy string) (*primary.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainerr.Validation("path", err.Error())
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domainerr.Validation("path", fmt.Sprintf("invalid template file: %v", err))
	}

	req := primary.CreateTemplateRequest{
		Name:      file.Name,
		Category:  file.Category,
		CreatedBy: createdBy,
		Items:     make([]primary.TemplateItem, len(file.Items)),
	}
	for i, item := range file.Items {
		req.Items[i] = primary.TemplateItem{Label: item.Label, Required: item.Required, Hint: item.Hint}
	}
	return s.CreateVersion(ctx, req)
}

func recordToTemplate(r *secondary.TemplateRecord) *primary.Template {
	t := &primary.Template{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Version:   r.Version,
		Active:    r.Active,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
	for _, item := range r.Items {
		t.Items = append(t.Items, primary.TemplateItem{Label: item.Label, Required: item.Required, Hint: item.Hint})
	}
	return t
}
