package model

// MinPasswordLength is the shortest password accepted at registration,
// counted after trimming surrounding whitespace.
const MinPasswordLength = 4

// Account represents a row in the `account` table.
//
// Fields:
//  ID       – primary key assigned by the store; zero before insert.
//  Username – unique, non-empty after trimming.
//  Password – stored and compared verbatim.
type Account struct {
	ID       int64  `json:"account_id"` // account.account_id
	Username string `json:"username"`   // account.username
	Password string `json:"password"`   // account.password
}
