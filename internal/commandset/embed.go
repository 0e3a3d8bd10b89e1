package commandset

import (
	"embed"
	"io/fs"
)

// defaults holds the built-in command tree at defaults/commands.yaml.
//
//go:embed defaults
var defaults embed.FS

// DefaultPath is the path of the built-in command tree inside DefaultFS.
const DefaultPath = "defaults/commands.yaml"

// DefaultFS returns the embedded filesystem holding the built-in commands.
func DefaultFS() fs.FS {
	return defaults
}
