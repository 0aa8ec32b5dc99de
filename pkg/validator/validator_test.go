package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("ada@example.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("a@b"))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email(strings.Repeat("a", 250)+"@example.com"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("password123"))
	assert.Error(t, Password("short"))
	assert.Error(t, Password(strings.Repeat("x", 73)))
}

func TestRoleName(t *testing.T) {
	assert.NoError(t, RoleName("reviewer"))
	assert.Error(t, RoleName("   "))
	assert.Error(t, RoleName(strings.Repeat("r", 51)))
	assert.NoError(t, RoleName(strings.Repeat("r", 50)))
	assert.Error(t, RoleName("bad\x01name"))
}

func TestDisplayNameAndTitle(t *testing.T) {
	assert.NoError(t, DisplayName("Ada Lovelace"))
	assert.Error(t, DisplayName(""))
	assert.NoError(t, Title("Fix login"))
	assert.Error(t, Title(strings.Repeat("t", 256)))
	assert.NoError(t, ProjectName("Apollo"))
	assert.Error(t, ProjectName(""))
}

func TestLabelNameAndColor(t *testing.T) {
	assert.NoError(t, LabelName("Bug"))
	assert.Error(t, LabelName(" "))
	assert.Error(t, LabelName(strings.Repeat("l", 51)))

	assert.NoError(t, Color("#FF0000"))
	assert.NoError(t, Color("#0af"))
	assert.Error(t, Color("FF0000"))
	assert.Error(t, Color("#GG0000"))
	assert.Error(t, Color("#FF00001"))
}

func TestContentAllowsNewlines(t *testing.T) {
	assert.NoError(t, Content("line one\nline two"))
	assert.Error(t, Content(" \n "))
}

func TestAvatarURL(t *testing.T) {
	assert.NoError(t, AvatarURL(""))
	assert.NoError(t, AvatarURL("https://cdn.example.com/a.png"))
	assert.Error(t, AvatarURL("javascript:alert(1)"))
}
