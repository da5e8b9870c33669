package partner

import (
	"regexp"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Status is the lifecycle state of a partner record
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Contact holds the reachability details shared by partners
type Contact struct {
	ContactName string `gorm:"type:varchar(100)"`
	Phone       string `gorm:"type:varchar(50)"`
	Email       string `gorm:"type:varchar(200)"`
	Address     string `gorm:"type:text"`
}

// Validate checks phone and email formats when present
func (c Contact) Validate() error {
	if c.Phone != "" {
		if len(c.Phone) > 50 {
			return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
		}
		if !phonePattern.MatchString(c.Phone) {
			return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
		}
	}
	if c.Email != "" {
		if len(c.Email) > 200 {
			return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
		}
		if !emailPattern.MatchString(c.Email) {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	return nil
}

func (c Contact) trimmed() Contact {
	return Contact{
		ContactName: strings.TrimSpace(c.ContactName),
		Phone:       strings.TrimSpace(c.Phone),
		Email:       strings.ToLower(strings.TrimSpace(c.Email)),
		Address:     strings.TrimSpace(c.Address),
	}
}

func validateCode(kind, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainErrorf("INVALID_CODE", "%s code cannot be empty", kind)
	}
	if len(code) > 50 {
		return shared.NewDomainErrorf("INVALID_CODE", "%s code cannot exceed 50 characters", kind)
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainErrorf("INVALID_CODE", "%s code can only contain letters, numbers, underscores, and hyphens", kind)
		}
	}
	return nil
}

func validateName(kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainErrorf("INVALID_NAME", "%s name cannot be empty", kind)
	}
	if len(name) > 200 {
		return shared.NewDomainErrorf("INVALID_NAME", "%s name cannot exceed 200 characters", kind)
	}
	return nil
}
