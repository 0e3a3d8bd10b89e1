package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/usekona/kona/internal/log"
)

// keyComments annotate the default config file.
var keyComments = map[string]string{
	"debug":                    "Write debug logs to log_file",
	"log_file":                 "Log file path (default: ~/.config/kona/kona.log)",
	"editor":                   "Editor behavior",
	"editor.trigger":           "Character that opens the slash command menu",
	"editor.debounce":          "Delay before the palette searches while typing",
	"editor.default_list_type": "List type used by list shortcuts: ul or ol",
	"editor.break_nodes":       "Blocks that become a paragraph when enter is pressed at their end",
	"editor.shortcuts":         "Markdown typing shortcuts such as \"# \" and \"**bold** \"",
	"editor.placeholder":       "Hint shown in an empty block; empty disables it",
	"editor.code_language":     "Language given to new code blocks (highlighting uses chroma names)",
	"commands":                 "Slash commands",
	"commands.file":            "YAML command tree (default: built-in commands)",
	"commands.watch":           "Reload the command file when it changes (kona edit)",
	"keys":                     "Key bindings; empty keeps the default (save: ctrl+s, palette: ctrl+space)",
	"flags":                    "Feature switches: quit-confirm, sidebar, log-overlay (needs debug)",
	"theme":                    "Theme presets: default, catppuccin-mocha, catppuccin-latte, dracula, nord, high-contrast",
	"tracing":                  "OpenTelemetry tracing; exporters: none, file, stdout, otlp",
}

// DefaultConfigYAML renders Defaults() as commented YAML.
func DefaultConfigYAML() ([]byte, error) {
	var root yaml.Node
	if err := root.Encode(Defaults()); err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	annotate(&root, "")
	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "Kona Configuration",
		Content:     []*yaml.Node{&root},
	}
	return encode(doc)
}

func annotate(n *yaml.Node, prefix string) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if prefix != "" {
			key = prefix + "." + key
		}
		if c, ok := keyComments[key]; ok {
			n.Content[i].HeadComment = c
		}
		annotate(n.Content[i+1], key)
	}
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	data, err := DefaultConfigYAML()
	if err != nil {
		return err
	}
	if err := writeAtomic(configPath, data); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return err
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// SetValue sets a dotted key such as "editor.trigger" in the config file,
// keeping comments and formatting elsewhere. The result must still decode
// into a valid Config.
func SetValue(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("invalid key %q", key)
		}
	}
	setScalar(doc.Content[0], parts, value)

	out, err := encode(&doc)
	if err != nil {
		return err
	}
	if _, err := Parse(out); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return writeAtomic(configPath, out)
}

// setScalar walks mapping nodes along path, creating missing ones, and
// sets the last key to a plain scalar.
func setScalar(m *yaml.Node, path []string, value string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != path[0] {
			continue
		}
		if len(path) == 1 {
			m.Content[i+1] = &yaml.Node{Kind: yaml.ScalarNode, Value: value}
			return
		}
		if m.Content[i+1].Kind != yaml.MappingNode {
			m.Content[i+1] = &yaml.Node{Kind: yaml.MappingNode}
		}
		setScalar(m.Content[i+1], path[1:], value)
		return
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: path[0]}
	if len(path) == 1 {
		m.Content = append(m.Content, keyNode, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
		return
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, keyNode, child)
	setScalar(child, path[1:], value)
}

// Parse decodes a config file over Defaults() and validates it. Unknown
// keys are an error.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func encode(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes to a temp file and renames it over configPath.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".kona.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0o600); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
