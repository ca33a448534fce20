// Package service contains infrastructure-side implementations of the
// application's ports: the embedded curriculum template provider and the
// notification sender.
package service

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

//go:embed templates/*.json
var templateFS embed.FS

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED TEMPLATE PROVIDER
// ══════════════════════════════════════════════════════════════════════════════

// EmbeddedTemplateProvider serves curriculum templates compiled into the
// binary. Published programs change only with a release, which keeps the
// curriculum and the engine versioned together.
type EmbeddedTemplateProvider struct {
	templates map[string]*specialization.CurriculumTemplate
}

// NewEmbeddedTemplateProvider loads and validates all embedded templates.
func NewEmbeddedTemplateProvider() (*EmbeddedTemplateProvider, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded templates: %w", err)
	}

	p := &EmbeddedTemplateProvider{
		templates: make(map[string]*specialization.CurriculumTemplate, len(entries)),
	}

	for _, entry := range entries {
		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", entry.Name(), err)
		}

		var tmpl specialization.CurriculumTemplate
		if err := json.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", entry.Name(), err)
		}
		if err := validateTemplate(&tmpl); err != nil {
			return nil, fmt.Errorf("invalid template %s: %w", entry.Name(), err)
		}

		key := templateKey(tmpl.ProgramCode, tmpl.SmkVersion)
		if _, exists := p.templates[key]; exists {
			return nil, fmt.Errorf("duplicate template for %s/%s", tmpl.ProgramCode, tmpl.SmkVersion)
		}
		p.templates[key] = &tmpl
	}

	return p, nil
}

// Get implements specialization.TemplateProvider.
func (p *EmbeddedTemplateProvider) Get(ctx context.Context, programCode string, version shared.SmkVersion) (*specialization.CurriculumTemplate, error) {
	tmpl, ok := p.templates[templateKey(programCode, version)]
	if !ok {
		return nil, shared.NewDomainError("template", "Get", shared.ErrTemplateNotFound,
			fmt.Sprintf("no curriculum template for program %q under %s registry", programCode, version))
	}
	return tmpl, nil
}

// ProgramCodes lists the embedded program codes, sorted.
func (p *EmbeddedTemplateProvider) ProgramCodes() []string {
	seen := make(map[string]struct{}, len(p.templates))
	for _, tmpl := range p.templates {
		seen[tmpl.ProgramCode] = struct{}{}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func templateKey(programCode string, version shared.SmkVersion) string {
	return version.String() + ":" + programCode
}

// validateTemplate rejects templates the engine cannot run against.
func validateTemplate(t *specialization.CurriculumTemplate) error {
	if t.ProgramCode == "" {
		return fmt.Errorf("program code is required")
	}
	if !t.SmkVersion.IsValid() {
		return fmt.Errorf("unknown smk version %q", t.SmkVersion)
	}
	if t.DurationYears < 1 || t.DurationYears > 6 {
		return fmt.Errorf("duration must be 1-6 years, got %d", t.DurationYears)
	}
	if len(t.Modules) == 0 {
		return fmt.Errorf("at least one module is required")
	}

	basicCount := 0
	for i, m := range t.Modules {
		if !m.Kind.IsValid() {
			return fmt.Errorf("module %d: unknown kind %q", i, m.Kind)
		}
		if m.Kind == shared.ModuleBasic {
			basicCount++
		}
		if m.DurationMonths <= 0 {
			return fmt.Errorf("module %d: duration months must be positive", i)
		}
		for _, proc := range m.Procedures {
			if proc.Code == "" {
				return fmt.Errorf("module %d: procedure requirement without code", i)
			}
			if proc.RequiredOperator < 0 || proc.RequiredAssistant < 0 {
				return fmt.Errorf("module %d: negative required count for %s", i, proc.Code)
			}
		}
	}
	if basicCount > 1 {
		return fmt.Errorf("at most one basic module is allowed, got %d", basicCount)
	}

	return nil
}
