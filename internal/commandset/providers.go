package commandset

import (
	"context"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/plugins/commands"
)

// ProviderEmoji lists emoji that insert themselves.
const ProviderEmoji = "emoji"

var builtinProviders = map[string]Provider{
	ProviderEmoji: emojiProvider,
}

func lookupProvider(opts Options, name string) (Provider, bool) {
	if p, ok := opts.Providers[name]; ok {
		return p, true
	}
	p, ok := builtinProviders[name]
	return p, ok
}

var emoji = []struct{ name, title, char string }{
	{"thumbs-up", "Thumbs up", "👍"},
	{"smile", "Smile", "😄"},
	{"heart", "Heart", "❤️"},
	{"check", "Check mark", "✅"},
	{"cross", "Cross mark", "❌"},
	{"warning", "Warning", "⚠️"},
	{"fire", "Fire", "🔥"},
	{"rocket", "Rocket", "🚀"},
	{"eyes", "Eyes", "👀"},
	{"tada", "Party popper", "🎉"},
}

// The resolver filters by query, so every emoji is returned.
func emojiProvider(ctx context.Context, _ commands.GetCommandsContext) ([]commands.Command, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]commands.Command, 0, len(emoji))
	for _, e := range emoji {
		char := e.char
		out = append(out, commands.Command{
			Name:        e.name,
			Title:       e.title,
			CommandName: e.name,
			Icon:        char,
			Action: logged(ProviderEmoji+"/"+e.name, func(a commands.Actions, _ *document.Editor) error {
				if err := a.RemoveCommand(); err != nil {
					return err
				}
				a.InsertText(char)
				return nil
			}),
		})
	}
	return out, nil
}
