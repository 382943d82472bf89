package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
)

var _ repository.TemplateRepository = (*TemplateRepo)(nil)

// TemplateRepo almacén de plantillas.
type TemplateRepo struct {
	mu        sync.RWMutex
	templates map[string]entity.InvoiceTemplate
}

func NewTemplateRepository() *TemplateRepo {
	return &TemplateRepo{templates: make(map[string]entity.InvoiceTemplate)}
}

func (r *TemplateRepo) Create(_ context.Context, tpl *entity.InvoiceTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[tpl.ID]; ok {
		return fmt.Errorf("%w: plantilla %s", domain.ErrDuplicate, tpl.ID)
	}
	r.templates[tpl.ID] = copyTemplate(*tpl)
	return nil
}

func (r *TemplateRepo) GetByID(_ context.Context, id string) (*entity.InvoiceTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	out := copyTemplate(tpl)
	return &out, nil
}

func (r *TemplateRepo) List(_ context.Context) ([]*entity.InvoiceTemplate, error) {
	r.mu.RLock()
	out := make([]*entity.InvoiceTemplate, 0, len(r.templates))
	for _, tpl := range r.templates {
		c := copyTemplate(tpl)
		out = append(out, &c)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func copyTemplate(t entity.InvoiceTemplate) entity.InvoiceTemplate {
	t.Items = append([]entity.InvoiceItem(nil), t.Items...)
	return t
}
