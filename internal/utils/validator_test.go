// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMobile(t *testing.T) {
	valid := []string{"9876543210", "6000000000", "7123456789", "8999999999"}
	for _, number := range valid {
		assert.True(t, IsValidMobile(number), "expected %s to be valid", number)
	}

	invalid := []string{"1234567890", "5876543210", "987654321", "98765432100", "98765abc10", ""}
	for _, number := range invalid {
		assert.False(t, IsValidMobile(number), "expected %s to be invalid", number)
	}
}

func TestIsValidPincode(t *testing.T) {
	assert.True(t, IsValidPincode("302001"))
	assert.True(t, IsValidPincode("110001"))

	assert.False(t, IsValidPincode("30200"))
	assert.False(t, IsValidPincode("3020011"))
	assert.False(t, IsValidPincode("30200a"))
	assert.False(t, IsValidPincode(""))
}

func TestIsValidGST(t *testing.T) {
	assert.True(t, IsValidGST("08ABCDE1234F1Z5"))
	assert.True(t, IsValidGST("27AAPFU0939F1ZV"))

	assert.False(t, IsValidGST("8ABCDE1234F1Z5"))    // short state code
	assert.False(t, IsValidGST("08abcde1234f1z5"))   // lowercase
	assert.False(t, IsValidGST("08ABCDE1234F1X5"))   // missing Z
	assert.False(t, IsValidGST("08ABCDE1234F1Z5X"))  // too long
	assert.False(t, IsValidGST(""))
}

func TestIsValidAadhaar(t *testing.T) {
	assert.True(t, IsValidAadhaar("123456789012"))

	assert.False(t, IsValidAadhaar("12345678901"))
	assert.False(t, IsValidAadhaar("1234567890123"))
	assert.False(t, IsValidAadhaar("12345678901a"))
}

func TestIsValidPAN(t *testing.T) {
	assert.True(t, IsValidPAN("ABCDE1234F"))

	assert.False(t, IsValidPAN("abcde1234f"))
	assert.False(t, IsValidPAN("ABCD1234F"))
	assert.False(t, IsValidPAN("ABCDE12345"))
	assert.False(t, IsValidPAN("ABCDE1234FF"))
}

func TestIsValidIFSC(t *testing.T) {
	assert.True(t, IsValidIFSC("SBIN0001234"))
	assert.True(t, IsValidIFSC("HDFC0CAG123"))

	assert.False(t, IsValidIFSC("SBIN1001234")) // fifth char must be 0
	assert.False(t, IsValidIFSC("SBI00001234"))
	assert.False(t, IsValidIFSC("sbin0001234"))
	assert.False(t, IsValidIFSC("SBIN000123"))
}

func TestIsValidBankAccount(t *testing.T) {
	assert.True(t, IsValidBankAccount("123456789"))
	assert.True(t, IsValidBankAccount("123456789012345678"))

	assert.False(t, IsValidBankAccount("12345678"))            // too short
	assert.False(t, IsValidBankAccount("1234567890123456789")) // too long
	assert.False(t, IsValidBankAccount("12345678a"))
}

func TestFieldErrorMapUsesWirePaths(t *testing.T) {
	type contact struct {
		Phone string `json:"phone" validate:"required,indian_mobile"`
	}
	type form struct {
		Name    string  `json:"name" validate:"required"`
		Contact contact `json:"contact"`
	}

	err := ValidateStruct(&form{Contact: contact{Phone: "12345"}})
	assert.Error(t, err)

	fields := FieldErrorMap(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "contact.phone")
}

func TestRegexValidatorSkipsEmptyValues(t *testing.T) {
	type form struct {
		GST string `json:"gst" validate:"omitempty,gst_number"`
	}

	assert.NoError(t, ValidateStruct(&form{}))
	assert.Error(t, ValidateStruct(&form{GST: "not-a-gst"}))
}
