package catalog

// CatalogError is a custom error type for catalog errors
type CatalogError string

// Error implements the error interface
func (e CatalogError) Error() string {
	return string(e)
}

const (
	ErrNilConfig            CatalogError = "config cannot be nil"
	ErrNoCategories         CatalogError = "catalog has no categories"
	ErrBlankCategoryName    CatalogError = "category name cannot be blank"
	ErrBlankLocationName    CatalogError = "location name cannot be blank"
	ErrDuplicateCategory    CatalogError = "duplicate category"
	ErrReservedCategoryName CatalogError = "category name is reserved for the aggregate category"
	ErrCategoryNotFound     CatalogError = "category not found"
)
