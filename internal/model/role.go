package model

type Role string

const (
	RoleBorrower  Role = "borrower"
	RoleClerk     Role = "clerk"
	RoleLibrarian Role = "librarian"
)

func (r Role) String() string {
	return string(r)
}
