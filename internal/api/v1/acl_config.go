package v1

import "github.com/shelfdesk/shelfdesk/internal/model"

const (
	routeSignin            = "signin"
	routeSearch            = "search"
	routeAccount           = "account"
	routePlaceHold         = "place-hold"
	routeCancelHold        = "cancel-hold"
	routePayFine           = "pay-fine"
	routeCheckout          = "checkout"
	routeReturn            = "return"
	routeCreateBorrower    = "create-borrower"
	routeBorrowerAccount   = "borrower-account"
	routeOverdue           = "overdue"
	routeListBorrowerTypes = "list-borrower-types"
	routeAddBook           = "add-book"
	routeAddCopy           = "add-copy"
	routeCheckedOut        = "checked-out"
	routePopular           = "popular"
	routeAddBorrowerType   = "add-borrower-type"
)

var authenticationAllowlist = map[string]bool{
	routeSignin: true,
}

// isUnauthorizeAllowed returns whether the route is exempted from authentication.
func isUnauthorizeAllowed(routeName string) bool {
	return authenticationAllowlist[routeName]
}

var (
	borrowerOnly  = []model.Role{model.RoleBorrower}
	clerkOnly     = []model.Role{model.RoleClerk}
	librarianOnly = []model.Role{model.RoleLibrarian}
	staff         = []model.Role{model.RoleClerk, model.RoleLibrarian}
	everyone      = []model.Role{model.RoleBorrower, model.RoleClerk, model.RoleLibrarian}
)

// allowedRoles maps every authenticated route to the roles that may call it.
var allowedRoles = map[string][]model.Role{
	routeSearch:            everyone,
	routeAccount:           borrowerOnly,
	routePlaceHold:         borrowerOnly,
	routeCancelHold:        borrowerOnly,
	routePayFine:           borrowerOnly,
	routeCheckout:          clerkOnly,
	routeReturn:            clerkOnly,
	routeCreateBorrower:    clerkOnly,
	routeBorrowerAccount:   clerkOnly,
	routeOverdue:           staff,
	routeListBorrowerTypes: staff,
	routeAddBook:           librarianOnly,
	routeAddCopy:           librarianOnly,
	routeCheckedOut:        librarianOnly,
	routePopular:           librarianOnly,
	routeAddBorrowerType:   librarianOnly,
}

// isRoleAllowed reports whether role may call the route. Unknown routes are
// refused.
func isRoleAllowed(routeName string, role model.Role) bool {
	for _, allowed := range allowedRoles[routeName] {
		if allowed == role {
			return true
		}
	}
	return false
}
