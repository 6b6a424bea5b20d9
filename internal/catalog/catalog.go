package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/KirkDiggler/spyround/internal/models"
	"gopkg.in/yaml.v3"
)

// AggregateName is the name of the category built from every other category
const AggregateName = "Roulette"

// aggregateAlias also resolves to the aggregate category
const aggregateAlias = "All"

//go:embed locations.yaml
var defaultData []byte

// Catalog is a read-only registry of location categories
type Catalog interface {
	// GetCategories returns the aggregate category followed by every concrete
	// category in file order
	GetCategories() []models.Category

	// GetAggregateCategory returns the flattened category whose location names
	// are qualified with their source category
	GetAggregateCategory() models.Category

	// GetCategory looks up a category by name, case-insensitively
	GetCategory(name string) (models.Category, error)
}

// Config holds the raw catalog document
type Config struct {
	// Data is a YAML document with a top-level "categories" list
	Data []byte
}

type document struct {
	Categories []struct {
		Name      string   `yaml:"name"`
		Locations []string `yaml:"locations"`
	} `yaml:"categories"`
}

type yamlCatalog struct {
	categories []models.Category
	aggregate  models.Category
	byName     map[string]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *yamlCatalog
)

// Default returns the catalog embedded in the binary. It is parsed once.
func Default() Catalog {
	defaultOnce.Do(func() {
		c, err := New(&Config{Data: defaultData})
		if err != nil {
			panic(fmt.Sprintf("embedded location catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a catalog document from disk
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	return New(&Config{Data: data})
}

// New parses a catalog document
func New(cfg *Config) (*yamlCatalog, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	var doc document
	if err := yaml.Unmarshal(cfg.Data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if len(doc.Categories) == 0 {
		return nil, ErrNoCategories
	}

	c := &yamlCatalog{
		categories: make([]models.Category, 0, len(doc.Categories)),
		byName:     make(map[string]int, len(doc.Categories)),
		aggregate: models.Category{
			Name:      AggregateName,
			Locations: []models.Location{},
			Aggregate: true,
		},
	}

	for _, raw := range doc.Categories {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, ErrBlankCategoryName
		}

		key := strings.ToLower(name)
		if key == strings.ToLower(AggregateName) || key == strings.ToLower(aggregateAlias) {
			return nil, fmt.Errorf("%w: %s", ErrReservedCategoryName, name)
		}
		if _, exists := c.byName[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
		}

		category := models.Category{
			Name:      name,
			Locations: make([]models.Location, 0, len(raw.Locations)),
		}
		for _, loc := range raw.Locations {
			locName := strings.TrimSpace(loc)
			if locName == "" {
				return nil, fmt.Errorf("%w: in category %s", ErrBlankLocationName, name)
			}
			category.Locations = append(category.Locations, models.Location{
				Name:     locName,
				Category: name,
			})
		}

		c.byName[key] = len(c.categories)
		c.categories = append(c.categories, category)
	}

	// Qualified names keep identical names from different categories apart
	for _, category := range c.categories {
		for _, loc := range category.Locations {
			c.aggregate.Locations = append(c.aggregate.Locations, models.Location{
				Name:     fmt.Sprintf("%s (%s)", loc.Name, category.Name),
				Category: category.Name,
			})
		}
	}

	return c, nil
}

// GetCategories returns copies of every category, aggregate first
func (c *yamlCatalog) GetCategories() []models.Category {
	categories := make([]models.Category, 0, len(c.categories)+1)
	categories = append(categories, c.aggregate.Clone())
	for _, category := range c.categories {
		categories = append(categories, category.Clone())
	}
	return categories
}

// GetAggregateCategory returns a copy of the aggregate category
func (c *yamlCatalog) GetAggregateCategory() models.Category {
	return c.aggregate.Clone()
}

// GetCategory returns a copy of the named category
func (c *yamlCatalog) GetCategory(name string) (models.Category, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == strings.ToLower(AggregateName) || key == strings.ToLower(aggregateAlias) {
		return c.GetAggregateCategory(), nil
	}

	idx, ok := c.byName[key]
	if !ok {
		return models.Category{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}

	return c.categories[idx].Clone(), nil
}
