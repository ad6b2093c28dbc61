package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNigerianPhone(t *testing.T) {
	valid := []string{"08031234567", "07061234567", "09011234567", "08101234567"}
	for _, v := range valid {
		assert.True(t, IsNigerianPhone(v), v)
	}

	invalid := []string{"", "0803123456", "080312345678", "+2348031234567", "06031234567", "0823123456a"}
	for _, v := range invalid {
		assert.False(t, IsNigerianPhone(v), v)
	}
}

func TestIsTransactionPin(t *testing.T) {
	assert.True(t, IsTransactionPin("0000"))
	assert.True(t, IsTransactionPin("1234"))

	assert.False(t, IsTransactionPin("123"))
	assert.False(t, IsTransactionPin("12345"))
	assert.False(t, IsTransactionPin("12a4"))
	assert.False(t, IsTransactionPin(""))
}

func TestStruct(t *testing.T) {
	type purchaseInput struct {
		Phone  string `validate:"required,ngphone"`
		Amount int64  `validate:"required,gt=0"`
		Pin    string `validate:"required,txnpin"`
	}

	t.Run("valid input", func(t *testing.T) {
		err := Struct(&purchaseInput{Phone: "08031234567", Amount: 10000, Pin: "1234"})
		assert.NoError(t, err)
	})

	t.Run("reports each failed field", func(t *testing.T) {
		err := Struct(&purchaseInput{Phone: "nope", Amount: 0, Pin: "12"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "phone must be a valid Nigerian phone number")
		assert.Contains(t, err.Error(), "amount is required")
		assert.Contains(t, err.Error(), "pin must be a 4-digit pin")
	})
}
