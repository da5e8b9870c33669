package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContact_Validate(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		wantErr string
	}{
		{"empty is fine", Contact{}, ""},
		{"valid", Contact{Phone: "+1 (555) 010-2000", Email: "a.b@example.com"}, ""},
		{"bad phone", Contact{Phone: "call me"}, "phone"},
		{"bad email", Contact{Email: "nobody@"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.contact.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates customer with normalized fields", func(t *testing.T) {
		c, err := NewCustomer(tenantID, "c-001", " Acme ", Contact{Email: " Sales@Acme.COM "})
		require.NoError(t, err)
		assert.Equal(t, "C-001", c.Code)
		assert.Equal(t, "Acme", c.Name)
		assert.Equal(t, "sales@acme.com", c.Email)
		assert.True(t, c.IsActive())
		require.Len(t, c.GetDomainEvents(), 1)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewCustomer(tenantID, "", "Acme", Contact{})
		assert.Error(t, err)
	})

	t.Run("credit limit", func(t *testing.T) {
		c, _ := NewCustomer(tenantID, "C2", "Beta", Contact{})
		require.NoError(t, c.SetCreditLimit(decimal.NewFromInt(1000)))
		assert.Error(t, c.SetCreditLimit(decimal.NewFromInt(-1)))
	})

	t.Run("status", func(t *testing.T) {
		c, _ := NewCustomer(tenantID, "C3", "Gamma", Contact{})
		require.NoError(t, c.SetStatus(StatusInactive))
		assert.False(t, c.IsActive())
		assert.Error(t, c.SetStatus("closed"))
	})
}

func TestNewSupplier(t *testing.T) {
	s, err := NewSupplier(uuid.New(), "sup-1", "Parts Co", Contact{Phone: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "SUP-1", s.Code)

	require.NoError(t, s.SetPaymentTerms(30))
	assert.Error(t, s.SetPaymentTerms(400))
	assert.Error(t, s.Update("SUP-1", "", Contact{}, ""))
}

func TestWarehouse_Default(t *testing.T) {
	w, err := NewWarehouse(uuid.New(), "main", "Main", Contact{})
	require.NoError(t, err)
	assert.False(t, w.IsDefault)

	require.NoError(t, w.SetDefault(true))
	assert.True(t, w.IsDefault)

	err = w.SetStatus(StatusInactive)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Default warehouse")

	require.NoError(t, w.SetDefault(false))
	require.NoError(t, w.SetStatus(StatusInactive))
	assert.Error(t, w.SetDefault(true))
}
