package dto

import (
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
)

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID   string    `json:"accountID"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   acc.AccountID,
		DisplayName: acc.DisplayName,
		Role:        string(acc.Role),
		IsActive:    acc.IsActive,
		CreatedAt:   acc.CreatedAt,
	}
}

// ProvisionAddressesRequest loads unassigned deposit addresses into the pool.
type ProvisionAddressesRequest struct {
	Asset     string   `json:"asset" binding:"required,currency"`
	Addresses []string `json:"addresses" binding:"required,min=1,max=1000,dive,required,max=128"`
}

// ProvisionAddressesResponse reports how many new addresses were added.
type ProvisionAddressesResponse struct {
	Asset string `json:"asset"`
	Added int    `json:"added"`
}

// DepositAddressResponse defines the data returned for a deposit address.
type DepositAddressResponse struct {
	Asset   string `json:"asset"`
	Address string `json:"address"`
}
