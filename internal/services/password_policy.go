package services

import (
	"fmt"
	"unicode"
)

// IdentityError describes one reason a registration was refused.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RegistrationError lists every rule the registration request violated.
type RegistrationError struct {
	Problems []IdentityError
}

func (e *RegistrationError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0].Description
	}
	return fmt.Sprintf("%d registration problems, first: %s", len(e.Problems), e.Problems[0].Description)
}

// PasswordPolicy holds the password requirements for new accounts.
type PasswordPolicy struct {
	MinLength       int
	RequireDigit    bool
	RequireLower    bool
	RequireUpper    bool
	RequireNonAlnum bool
}

// DefaultPasswordPolicy requires six characters with a digit, a lowercase and an
// uppercase letter and a symbol.
var DefaultPasswordPolicy = PasswordPolicy{
	MinLength:       6,
	RequireDigit:    true,
	RequireLower:    true,
	RequireUpper:    true,
	RequireNonAlnum: true,
}

// Check returns one IdentityError per violated rule, or nil.
func (p PasswordPolicy) Check(password string) []IdentityError {
	var hasDigit, hasLower, hasUpper, hasOther bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasOther = true
		}
	}

	var problems []IdentityError
	if len([]rune(password)) < p.MinLength {
		problems = append(problems, IdentityError{
			Code:        "PasswordTooShort",
			Description: fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength),
		})
	}
	if p.RequireNonAlnum && !hasOther {
		problems = append(problems, IdentityError{
			Code:        "PasswordRequiresNonAlphanumeric",
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}
	if p.RequireDigit && !hasDigit {
		problems = append(problems, IdentityError{
			Code:        "PasswordRequiresDigit",
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}
	if p.RequireLower && !hasLower {
		problems = append(problems, IdentityError{
			Code:        "PasswordRequiresLower",
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}
	if p.RequireUpper && !hasUpper {
		problems = append(problems, IdentityError{
			Code:        "PasswordRequiresUpper",
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}
	return problems
}
