// Package ops implements the operations shared by the CLI and the MCP server.
package ops

import (
	"strings"

	"github.com/hpungsan/specforge/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// ValidateProjectID trims id and rejects blank values.
func ValidateProjectID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("project id is required")
	}
	return id, nil
}
