package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minEmailLength       = 3
	maxEmailLength       = 255
	minPasswordLength    = 8
	maxPasswordLength    = 72 // bcrypt ignores bytes past 72
	maxDisplayNameLen    = 100
	maxRoleNameLen       = 50
	maxProjectNameLen    = 255
	maxTitleLen          = 255
	maxContentLen        = 10000
	maxLabelNameLen      = 50
	maxAvatarURLLen      = 2048
	asciiControlStart    = 32
	asciiDelete          = 127
	errEmailEmpty        = "email cannot be empty"
	errEmailLengthFmt    = "email must be between %d and %d characters"
	errEmailInvalid      = "invalid email format"
	errPasswordMinFmt    = "password must be at least %d characters"
	errPasswordMaxFmt    = "password must not exceed %d bytes"
	errDisplayNameEmpty  = "display name cannot be empty"
	errDisplayNameMaxFmt = "display name must not exceed %d characters"
	errRoleNameEmpty     = "role name cannot be empty"
	errRoleNameMaxFmt    = "role name must not exceed %d characters"
	errProjectNameEmpty  = "project name cannot be empty"
	errProjectNameMaxFmt = "project name must not exceed %d characters"
	errTitleEmpty        = "title cannot be empty"
	errTitleMaxFmt       = "title must not exceed %d characters"
	errContentEmpty      = "content cannot be empty"
	errContentMaxFmt     = "content must not exceed %d characters"
	errLabelNameEmpty    = "label name cannot be empty"
	errLabelNameMaxFmt   = "label name must not exceed %d characters"
	errColorInvalid      = "color must be a hex value like #FF0000"
	errAvatarURLMaxFmt   = "avatar url must not exceed %d characters"
	errAvatarURLScheme   = "avatar url must use http or https"
	errControlCharsFmt   = "%s cannot contain control characters"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	colorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// NormalizeEmail trims and lowercases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Email(email string) error {
	if email == "" {
		return errors.New(errEmailEmpty)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return errors.New(errEmailInvalid)
	}

	return nil
}

func Password(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxFmt, maxPasswordLength)
	}

	return nil
}

func DisplayName(name string) error {
	return boundedText(name, "display name", errDisplayNameEmpty, errDisplayNameMaxFmt, maxDisplayNameLen)
}

func RoleName(name string) error {
	return boundedText(name, "role name", errRoleNameEmpty, errRoleNameMaxFmt, maxRoleNameLen)
}

func ProjectName(name string) error {
	return boundedText(name, "project name", errProjectNameEmpty, errProjectNameMaxFmt, maxProjectNameLen)
}

func Title(title string) error {
	return boundedText(title, "title", errTitleEmpty, errTitleMaxFmt, maxTitleLen)
}

func LabelName(name string) error {
	return boundedText(name, "label name", errLabelNameEmpty, errLabelNameMaxFmt, maxLabelNameLen)
}

// Color accepts #RGB or #RRGGBB.
func Color(color string) error {
	if !colorRegex.MatchString(color) {
		return errors.New(errColorInvalid)
	}
	return nil
}

// Content validates free text such as comment bodies. Newlines are allowed.
func Content(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New(errContentEmpty)
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return fmt.Errorf(errContentMaxFmt, maxContentLen)
	}
	return nil
}

func AvatarURL(url string) error {
	if url == "" {
		return nil
	}
	if len(url) > maxAvatarURLLen {
		return fmt.Errorf(errAvatarURLMaxFmt, maxAvatarURLLen)
	}
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return errors.New(errAvatarURLScheme)
	}
	return nil
}

func boundedText(value, field, emptyMsg, maxFmt string, max int) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(emptyMsg)
	}

	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf(maxFmt, max)
	}

	for _, char := range value {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errControlCharsFmt, field)
		}
	}

	return nil
}
