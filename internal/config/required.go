package config

import (
	"fmt"
	"os"
	"strings"
)

const errRequiredEnvNotSetFmt = "required environment variables not set: %s"

// missingEnv collects every empty required variable so Load can report them
// all at once.
type missingEnv []string

func (m *missingEnv) require(key string) string {
	value := os.Getenv(key)
	if value == "" {
		*m = append(*m, key)
	}
	return value
}

func (m missingEnv) err() error {
	if len(m) == 0 {
		return nil
	}
	return fmt.Errorf(errRequiredEnvNotSetFmt, strings.Join(m, ", "))
}
