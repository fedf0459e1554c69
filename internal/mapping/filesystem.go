package mapping

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// rawMappingFile is the on-disk YAML shape: one file per tenant.
//
//	tenant_id: tenant-1
//	mappings:
//	  - id: 1
//	    operation_name: Продажа
//	    category_id: 10
//	    source_field: retail_amount
//	    sign_multiplier: "1"
type rawMappingFile struct {
	TenantID string       `yaml:"tenant_id"`
	Mappings []rawMapping `yaml:"mappings"`
}

type rawMapping struct {
	ID               int64  `yaml:"id"`
	OperationName    string `yaml:"operation_name"`
	DocumentTypeName string `yaml:"document_type_name"`
	CountryCode      string `yaml:"country_code"`
	CategoryID       int64  `yaml:"category_id"`
	SourceField      string `yaml:"source_field"`
	SignMultiplier   string `yaml:"sign_multiplier"` // defaults to 1
	IsActive         *bool  `yaml:"is_active"`       // defaults to true
}

// FileSystemRepository serves category mappings from *.yaml files in a directory.
// Files are loaded once at startup; there is no hot reload.
type FileSystemRepository struct {
	dir      string
	byTenant map[string][]v1.CategoryMapping
}

// NewFileSystemRepository eagerly loads every mapping file in dir.
// A missing directory is valid and yields no mappings.
func NewFileSystemRepository(dir string) (*FileSystemRepository, error) {
	repo := &FileSystemRepository{
		dir:      dir,
		byTenant: make(map[string][]v1.CategoryMapping),
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mapping dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mapping path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading mapping dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading mapping file %s: %w", path, err)
		}

		var file rawMappingFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parsing mapping file %s: %w", path, err)
		}
		if file.TenantID == "" {
			if len(file.Mappings) == 0 {
				continue
			}
			return fmt.Errorf("mapping file %s: tenant_id must not be empty", path)
		}

		if err := r.addFile(path, file); err != nil {
			return err
		}
	}

	for tenantID := range r.byTenant {
		mappings := r.byTenant[tenantID]
		sort.Slice(mappings, func(i, j int) bool { return mappings[i].ID < mappings[j].ID })
	}
	return nil
}

func (r *FileSystemRepository) addFile(path string, file rawMappingFile) error {
	seen := make(map[int64]bool)
	var maxID int64
	for _, m := range r.byTenant[file.TenantID] {
		seen[m.ID] = true
		maxID = max(maxID, m.ID)
	}

	for i, raw := range file.Mappings {
		m := v1.CategoryMapping{
			ID:               raw.ID,
			TenantID:         file.TenantID,
			OperationName:    raw.OperationName,
			DocumentTypeName: raw.DocumentTypeName,
			CountryCode:      raw.CountryCode,
			CategoryID:       raw.CategoryID,
			SourceField:      raw.SourceField,
		}
		if m.ID == 0 {
			m.ID = maxID + 1
		}
		maxID = max(maxID, m.ID)
		if seen[m.ID] {
			return fmt.Errorf("mapping file %s: duplicate mapping id %d", path, m.ID)
		}
		seen[m.ID] = true

		m.SignMultiplier = decimal.NewFromInt(1)
		if raw.SignMultiplier != "" {
			sign, err := decimal.NewFromString(raw.SignMultiplier)
			if err != nil {
				return fmt.Errorf("mapping file %s: entry %d: invalid sign_multiplier %q", path, i, raw.SignMultiplier)
			}
			m.SignMultiplier = sign
		}
		m.IsActive = raw.IsActive == nil || *raw.IsActive

		if err := m.Validate(); err != nil {
			return fmt.Errorf("mapping file %s: entry %d: %w", path, i, err)
		}
		r.byTenant[file.TenantID] = append(r.byTenant[file.TenantID], m)
	}
	return nil
}

// ActiveMappings returns the tenant's active mappings ordered by id.
func (r *FileSystemRepository) ActiveMappings(_ context.Context, tenantID string) ([]v1.CategoryMapping, error) {
	var out []v1.CategoryMapping
	for _, m := range r.byTenant[tenantID] {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}
