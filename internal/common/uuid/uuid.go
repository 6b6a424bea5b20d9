package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/KirkDiggler/spyround/internal/common/uuid UUID

// UUID generates identifiers for rounds and tables
type UUID interface {
	NewUUID() string
}

// DefaultUUID implements the UUID interface using google/uuid
type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new random (v4) UUID string
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}
