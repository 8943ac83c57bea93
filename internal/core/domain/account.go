package domain

// Role is the authorization role supplied by the auth layer.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is the holder of ledger entries. Accounts are provisioned by the
// auth layer; the ledger core only checks that they exist and are active.
type Account struct {
	AccountID   string `json:"accountID"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	AccountID string
	Role      Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the actor may read data owned by accountID.
func (a Actor) CanAccess(accountID string) bool {
	return a.IsAdmin() || a.AccountID == accountID
}

// SystemActor is used for automated transitions.
func SystemActor() Actor {
	return Actor{AccountID: SystemActorID, Role: RoleAdmin}
}
