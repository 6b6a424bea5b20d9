package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CatalogTestSuite struct {
	suite.Suite
	catalog Catalog
}

func (s *CatalogTestSuite) SetupTest() {
	s.catalog = Default()
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (s *CatalogTestSuite) TestDefaultCategoriesInOrder() {
	categories := s.catalog.GetCategories()
	s.Require().Len(categories, 13)

	s.Equal(AggregateName, categories[0].Name)
	s.True(categories[0].Aggregate)

	names := make([]string, 0, len(categories)-1)
	for _, category := range categories[1:] {
		s.False(category.Aggregate)
		s.NotEmpty(category.Locations, "category %s has no locations", category.Name)
		names = append(names, category.Name)
	}

	s.Equal([]string{
		"Restaurant", "Hospital", "Hotel", "School", "Transport", "Entertainment",
		"Shopping", "Nature", "Workplace", "Sports", "Countries", "MIT",
	}, names)
}

func (s *CatalogTestSuite) TestAggregateFlattensEveryCategory() {
	aggregate := s.catalog.GetAggregateCategory()

	total := 0
	for _, category := range s.catalog.GetCategories()[1:] {
		total += len(category.Locations)
	}
	s.Len(aggregate.Locations, total)

	s.Equal("Italian Restaurant (Restaurant)", aggregate.Locations[0].Name)
	s.Equal("Restaurant", aggregate.Locations[0].Category)

	last := aggregate.Locations[len(aggregate.Locations)-1]
	s.Equal("MIT", last.Category)
	s.Contains(last.Name, "(MIT)")
}

func (s *CatalogTestSuite) TestGetCategory() {
	school, err := s.catalog.GetCategory("School")
	s.Require().NoError(err)
	s.Equal("School", school.Name)
	s.Len(school.Locations, 20)
	s.Equal("Elementary School", school.Locations[0].Name)

	lower, err := s.catalog.GetCategory("  school ")
	s.Require().NoError(err)
	s.Equal("School", lower.Name)
}

func (s *CatalogTestSuite) TestGetCategoryResolvesAggregate() {
	for _, name := range []string{"Roulette", "roulette", "All"} {
		category, err := s.catalog.GetCategory(name)
		s.Require().NoError(err)
		s.True(category.Aggregate)
	}
}

func (s *CatalogTestSuite) TestGetCategoryNotFound() {
	_, err := s.catalog.GetCategory("Moon Base")
	s.ErrorIs(err, ErrCategoryNotFound)
}

func (s *CatalogTestSuite) TestReturnedCategoriesAreCopies() {
	school, err := s.catalog.GetCategory("School")
	s.Require().NoError(err)
	school.Locations[0].Name = "Tampered"

	again, err := s.catalog.GetCategory("School")
	s.Require().NoError(err)
	s.Equal("Elementary School", again.Locations[0].Name)

	aggregate := s.catalog.GetAggregateCategory()
	aggregate.Locations = aggregate.Locations[:1]
	s.Greater(len(s.catalog.GetAggregateCategory().Locations), 1)
}

func (s *CatalogTestSuite) TestNewRejectsBadDocuments() {
	testCases := []struct {
		name string
		data string
		err  error
	}{
		{
			name: "no categories",
			data: "categories: []",
			err:  ErrNoCategories,
		},
		{
			name: "blank category",
			data: "categories:\n  - name: \" \"\n    locations: [a]",
			err:  ErrBlankCategoryName,
		},
		{
			name: "blank location",
			data: "categories:\n  - name: Park\n    locations: [\"\"]",
			err:  ErrBlankLocationName,
		},
		{
			name: "duplicate",
			data: "categories:\n  - name: Park\n    locations: [a]\n  - name: park\n    locations: [b]",
			err:  ErrDuplicateCategory,
		},
		{
			name: "reserved",
			data: "categories:\n  - name: Roulette\n    locations: [a]",
			err:  ErrReservedCategoryName,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := New(&Config{Data: []byte(tc.data)})
			s.ErrorIs(err, tc.err)
		})
	}
}

func (s *CatalogTestSuite) TestNewRejectsInvalidYAML() {
	_, err := New(&Config{Data: []byte("categories: [")})
	s.Error(err)

	_, err = New(nil)
	s.ErrorIs(err, ErrNilConfig)
}

func (s *CatalogTestSuite) TestNewAllowsEmptyCategory() {
	c, err := New(&Config{Data: []byte("categories:\n  - name: Void\n    locations: []\n  - name: Park\n    locations: [Bench, Pond]")})
	s.Require().NoError(err)

	void, err := c.GetCategory("Void")
	s.Require().NoError(err)
	s.Empty(void.Locations)

	s.Equal([]string{"Bench (Park)", "Pond (Park)"}, []string{
		c.GetAggregateCategory().Locations[0].Name,
		c.GetAggregateCategory().Locations[1].Name,
	})
}

func (s *CatalogTestSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "locations.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("categories:\n  - name: Office\n    locations: [Desk]"), 0o600))

	c, err := Load(path)
	s.Require().NoError(err)

	office, err := c.GetCategory("office")
	s.Require().NoError(err)
	s.Equal("Desk", office.Locations[0].Name)

	_, err = Load(filepath.Join(s.T().TempDir(), "missing.yaml"))
	s.Error(err)
}
