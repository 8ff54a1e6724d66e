package account

// Account is a registered user identity. ID is zero until the store assigns one
// on insert.
type Account struct {
	ID       int    `json:"account_id" db:"account_id"`
	Username string `json:"username" db:"username" validate:"required"`
	Password string `json:"password" db:"password" validate:"min=4"`
}
