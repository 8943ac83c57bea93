package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
)

const ledgerTokenPrefix = "ledger"

// EncodeMultiFieldToken creates a token with any number of string fields
// This provides flexibility for different pagination strategies
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	tokenStr := string(decodedBytes)
	parts := strings.Split(tokenStr, "|")
	return parts, nil
}

// EncodeLedgerToken creates the cursor for the page that follows entryID.
func EncodeLedgerToken(entryID string) string {
	return EncodeMultiFieldToken(ledgerTokenPrefix, entryID)
}

// DecodeLedgerToken returns the entry ID a ledger cursor points after.
func DecodeLedgerToken(token string) (string, error) {
	fields, err := DecodeMultiFieldToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if len(fields) != 2 || fields[0] != ledgerTokenPrefix || fields[1] == "" {
		return "", fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
	}
	return fields[1], nil
}
