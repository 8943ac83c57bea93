package models

// Account mirrors a row of the accounts table.
type Account struct {
	AccountID   string `db:"account_id"`
	DisplayName string `db:"display_name"`
	Role        string `db:"role"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}
