// Package commandset loads slash command trees from YAML and builds them
// into menu commands.
package commandset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the root structure of a commands file.
type File struct {
	Commands []Definition `yaml:"commands"`
}

// Definition is one command in YAML. Exactly one of Action, Children and
// Provider must be set.
type Definition struct {
	Name        string       `yaml:"name"`     // Unique among siblings
	Title       string       `yaml:"title"`    // Defaults to Name
	CommandName string       `yaml:"command"`  // Search alias, defaults to the lowercased title
	Icon        string       `yaml:"icon"`     // Optional
	Action      *ActionDef   `yaml:"action"`   // Runnable command
	Children    []Definition `yaml:"children"` // Static submenu
	Provider    string       `yaml:"provider"` // Dynamic submenu, by provider name
}

// ActionDef describes what running a command does. Exactly one field is set.
type ActionDef struct {
	Set       map[string]any `yaml:"set"`       // Props set on the selected blocks
	Insert    string         `yaml:"insert"`    // Markup inserted at the cursor
	Text      string         `yaml:"text"`      // Text typed at the cursor
	List      string         `yaml:"list"`      // ul or ol, toggled
	Heading   int            `yaml:"heading"`   // Heading level, toggled
	Mark      string         `yaml:"mark"`      // Mark toggled on the selection
	Link      string         `yaml:"link"`      // URL linked at the cursor
	Code      string         `yaml:"code"`      // Code block language, toggled
	Highlight string         `yaml:"highlight"` // Highlight color, toggled
}

// Parse decodes a commands file. Unknown keys are an error.
func Parse(data []byte) ([]Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return file.Commands, nil
}

// Load reads and parses the commands file at path.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return defs, nil
}

// LoadFS reads and parses the commands file at path in fsys.
func LoadFS(fsys fs.FS, path string) ([]Definition, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return defs, nil
}

// Default returns the built-in command tree.
func Default() ([]Definition, error) {
	return LoadFS(DefaultFS(), DefaultPath)
}
