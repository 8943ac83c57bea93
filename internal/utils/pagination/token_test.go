package pagination

import (
	"testing"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestEncodeMultiFieldToken(t *testing.T) {
	// Test with simple fields
	fields := []string{"field1", "field2", "field3"}
	token := EncodeMultiFieldToken(fields...)

	decodedFields, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, fields, decodedFields, "Fields should match after decode")

	// When splitting an empty string with strings.Split, we get a slice with one empty string
	decodedEmpty, err := DecodeMultiFieldToken(EncodeMultiFieldToken())
	assert.NoError(t, err)
	assert.Equal(t, []string{""}, decodedEmpty)

	_, err = DecodeMultiFieldToken("%%%not-base64")
	assert.Error(t, err)
}

func TestLedgerToken(t *testing.T) {
	token := EncodeLedgerToken("9b0c7a52-0000-4000-8000-000000000001")

	entryID, err := DecodeLedgerToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "9b0c7a52-0000-4000-8000-000000000001", entryID)

	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%"},
		{"wrong prefix", EncodeMultiFieldToken("position", "abc")},
		{"missing id", EncodeMultiFieldToken("ledger", "")},
		{"extra fields", EncodeMultiFieldToken("ledger", "a", "b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLedgerToken(tt.token)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
