package auth

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

const (
	maxNameRunes     = 40
	maxLocationRunes = 120
	minPasswordBytes = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.New("invalid email address")
	}
	return email, nil
}

// normalizeName collapses inner whitespace. Names are letters, spaces,
// hyphens and apostrophes.
func normalizeName(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", errors.New("name cannot be empty")
	}
	if len([]rune(name)) > maxNameRunes {
		return "", errors.New("name cannot exceed 40 characters")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return "", errors.New("name may only contain letters, spaces, hyphens and apostrophes")
		}
	}
	return name, nil
}

// normalizeLocation accepts any place name the forecast provider can resolve;
// an empty location means "use the service default".
func normalizeLocation(raw string) (string, error) {
	location := strings.Join(strings.Fields(raw), " ")
	if len([]rune(location)) > maxLocationRunes {
		return "", errors.New("location cannot exceed 120 characters")
	}
	return location, nil
}

func validatePassword(password string) error {
	switch {
	case len(password) < minPasswordBytes:
		return errors.New("password must be at least 8 characters")
	case len(password) > maxPasswordBytes:
		return errors.New("password cannot exceed 72 bytes")
	}
	return nil
}
