package presentation

import (
	"github.com/usekona/kona/internal/plugins/commands"
)

// CommandDTO represents a resolved slash command for presentation
type CommandDTO struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Command    string   `json:"command,omitempty"`
	Icon       string   `json:"icon,omitempty"`
	Path       []string `json:"path"`
	Breadcrumb string   `json:"breadcrumb,omitempty"`
	Submenu    bool     `json:"submenu"`
}

// DocumentDTO is the result of normalizing a document.
type DocumentDTO struct {
	Path    string `json:"path,omitempty"`
	Markup  string `json:"markup"`
	Changed bool   `json:"changed"`
}

// FromResolvedCommand converts a resolved command to a DTO.
func FromResolvedCommand(rc commands.ResolvedCommand) CommandDTO {
	path := make([]string, len(rc.Path))
	for i, p := range rc.Path {
		path[i] = p.Name
	}
	return CommandDTO{
		Key:        rc.Key,
		Name:       rc.Command.Name,
		Title:      rc.Command.Title,
		Command:    rc.Command.CommandName,
		Icon:       rc.Command.Icon,
		Path:       path,
		Breadcrumb: rc.Breadcrumb,
		Submenu:    rc.IsSubmenu,
	}
}

// FromResolvedCommands converts resolved commands to DTOs. The result is
// never nil so it encodes as [].
func FromResolvedCommands(rcs []commands.ResolvedCommand) []CommandDTO {
	out := make([]CommandDTO, 0, len(rcs))
	for _, rc := range rcs {
		out = append(out, FromResolvedCommand(rc))
	}
	return out
}
