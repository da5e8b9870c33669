package catalog

import (
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Status is the availability of a catalog record
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// validateCode checks codes and SKUs: non-empty, bounded, and limited to letters,
// digits, underscores, hyphens and dots
func validateCode(kind, code string, maxLen int) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainErrorf("INVALID_CODE", "%s cannot be empty", kind)
	}
	if len(code) > maxLen {
		return shared.NewDomainErrorf("INVALID_CODE", "%s cannot exceed %d characters", kind, maxLen)
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewDomainErrorf("INVALID_CODE", "%s can only contain letters, numbers, dots, underscores, and hyphens", kind)
		}
	}
	return nil
}

func validateName(kind, name string, maxLen int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainErrorf("INVALID_NAME", "%s name cannot be empty", kind)
	}
	if len(name) > maxLen {
		return shared.NewDomainError("INVALID_NAME", fmt.Sprintf("%s name cannot exceed %d characters", kind, maxLen))
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
