package visionati

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/image-captioner/captioner/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var rolesYAML []byte

// PromptTable maps each persona to its prompt text.
type PromptTable struct {
	Boilerplate string                `yaml:"boilerplate"`
	Roles       map[model.Role]string `yaml:"roles"`
}

// LoadPromptTable parses a prompt table and rejects unknown roles.
func LoadPromptTable(data []byte) (*PromptTable, error) {
	var t PromptTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse prompt table: %w", err)
	}
	for role := range t.Roles {
		if !role.Valid() {
			return nil, fmt.Errorf("prompt table: unknown role %q", role)
		}
	}
	t.Boilerplate = strings.TrimSpace(t.Boilerplate)
	return &t, nil
}

// DefaultPrompts returns the embedded prompt table.
func DefaultPrompts() *PromptTable {
	t, err := LoadPromptTable(rolesYAML)
	if err != nil {
		//nolint:forbidigo // embedded asset; a parse failure is a build defect
		panic(err)
	}
	return t
}

// Resolve returns the prompt to send for a role. A non-empty custom prompt
// replaces the role prompt. The result is "" when there is nothing to send,
// otherwise the chosen prompt followed by the boilerplate.
func (t *PromptTable) Resolve(role model.Role, custom string) string {
	base := strings.TrimSpace(custom)
	if base == "" {
		base = strings.TrimSpace(t.Roles[role])
	}
	if base == "" {
		return ""
	}
	if t.Boilerplate == "" {
		return base
	}
	return base + " " + t.Boilerplate
}
