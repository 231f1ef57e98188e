package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microfin/loanbook/internal/domain/model"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates an active customer", func(t *testing.T) {
		c, err := model.NewCustomer("CUS-0001", "Jane Perera", "902345678V", "+94771234567", "12 Galle Rd", "", issueDate)
		require.NoError(t, err)

		assert.Equal(t, "CUS-0001", c.ID())
		assert.True(t, c.Active())
		assert.Equal(t, 1, c.Version())
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		cases := []struct {
			name                 string
			fullName, nic, phone string
		}{
			{"no name", "", "902345678V", "+94771234567"},
			{"no nic", "Jane Perera", "", "+94771234567"},
			{"no phone", "Jane Perera", "902345678V", ""},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := model.NewCustomer("CUS-0001", tc.fullName, tc.nic, tc.phone, "", "", issueDate)
				assert.Error(t, err)
			})
		}
	})
}

func TestCustomer_Apply(t *testing.T) {
	c, err := model.NewCustomer("CUS-0001", "Jane Perera", "902345678V", "+94771234567", "", "", issueDate)
	require.NoError(t, err)

	t.Run("updates supplied fields only", func(t *testing.T) {
		phone := "+94779999999"
		active := false

		updated, err := c.Apply(model.CustomerChanges{Phone: &phone, Active: &active}, issueDate.AddDate(0, 0, 1))
		require.NoError(t, err)

		assert.Equal(t, phone, updated.Phone())
		assert.False(t, updated.Active())
		assert.Equal(t, "Jane Perera", updated.FullName())
	})

	t.Run("rejects blanking a required field", func(t *testing.T) {
		empty := ""
		_, err := c.Apply(model.CustomerChanges{NIC: &empty}, issueDate)
		assert.Error(t, err)
	})
}
