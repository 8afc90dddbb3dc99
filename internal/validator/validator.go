package validator

import "regexp"

var (
	loginRe = regexp.MustCompile(`^[a-zA-Z0-9_]{4,64}$`)
	slugRe  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	kebabRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

func IsValidLogin(login string) bool {
	return loginRe.MatchString(login)
}

func IsValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 72 {
		return false
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}

	return hasLetter && hasDigit
}

func IsValidSlug(slug string) bool {
	return len(slug) <= 64 && slugRe.MatchString(slug)
}

// IsKebabCase reports whether a rule file stem follows the corpus naming
// convention (lowercase, digits, single dashes).
func IsKebabCase(stem string) bool {
	return kebabRe.MatchString(stem)
}
