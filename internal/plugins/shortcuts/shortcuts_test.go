package shortcuts

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/editor"
	"github.com/usekona/kona/internal/plugin"
	"github.com/usekona/kona/internal/plugins/codeblock"
	"github.com/usekona/kona/internal/plugins/formatting"
	"github.com/usekona/kona/internal/plugins/headings"
	"github.com/usekona/kona/internal/plugins/lists"
)

func compose(t *testing.T, opts Options, initial ...document.Node) *editor.Editor {
	t.Helper()
	if len(initial) == 0 {
		initial = []document.Node{document.Paragraph("")}
	}
	e := editor.Compose([]plugin.Plugin{
		headings.New(),
		lists.New(lists.Options{}).Plugin(),
		codeblock.New(codeblock.Options{}).Plugin(),
		formatting.New(),
		New(opts),
	}, editor.WithInitialValue(initial...))
	require.NoError(t, e.Select(document.Point{Path: document.Path{0, 0}}))
	return e
}

func typeText(e *editor.Editor, s string) {
	for _, r := range s {
		e.InsertText(string(r))
	}
}

func firstType(e *editor.Editor) string {
	return document.AsElement(e.Children()[0]).Type
}

func TestDefaults_Blocks(t *testing.T) {
	tests := []struct {
		typed string
		want  string
	}{
		{"# ", headings.Heading1},
		{"## ", headings.Heading2},
		{"### ", headings.Heading3},
		{"- ", lists.BulletedList},
		{"* ", lists.BulletedList},
		{"1. ", lists.NumberedList},
	}
	for _, tt := range tests {
		t.Run(tt.typed, func(t *testing.T) {
			e := compose(t, Options{Shortcuts: Defaults()})

			typeText(e, tt.typed)

			require.Equal(t, tt.want, firstType(e))
			require.Equal(t, "", e.String(document.Path{0}))
		})
	}
}

func TestDefaults_NoMatchTypesTrigger(t *testing.T) {
	for _, typed := range []string{"#x ", "** ", "a - ", "2. "} {
		t.Run(typed, func(t *testing.T) {
			e := compose(t, Options{Shortcuts: Defaults()})

			typeText(e, typed)

			require.Equal(t, document.DefaultBlockType, firstType(e))
			require.Equal(t, typed, e.String(document.Path{0}))
		})
	}
}

func TestDefaults_Marks(t *testing.T) {
	e := compose(t, Options{Shortcuts: Defaults()})

	typeText(e, "a *it* ")

	require.Equal(t, "a it", e.String(document.Path{0}))
	el := document.AsElement(e.Children()[0])
	require.Len(t, el.Children, 2)
	require.False(t, el.Children[0].(*document.Text).HasMark(formatting.Italic))
	require.Equal(t, "it", el.Children[1].(*document.Text).Text)
	require.True(t, el.Children[1].(*document.Text).HasMark(formatting.Italic))
	require.True(t, e.Selection().IsCollapsed())
}

func TestDefaults_Bold(t *testing.T) {
	e := compose(t, Options{Shortcuts: Defaults()})

	typeText(e, "**loud** ")

	require.Equal(t, "loud", e.String(document.Path{0}))
	leaf, err := e.Leaf(document.Path{0, 0})
	require.NoError(t, err)
	require.True(t, leaf.HasMark(formatting.Bold))
}

func TestIgnoreNodes(t *testing.T) {
	e := compose(t, Options{Shortcuts: Defaults(), IgnoreNodes: []string{"code"}},
		document.NewElement("code", document.NewText("")))

	typeText(e, "# ")

	require.Equal(t, "code", firstType(e))
	require.Equal(t, "# ", e.String(document.Path{0}))
}

func TestCustomShortcut_Submatches(t *testing.T) {
	var got Match
	calls := 0
	sum := Shortcut{
		Trigger: "=",
		Before:  regexp.MustCompile(`(\d+)\+(\d+)$`),
		Change: func(_ *document.Editor, m Match) {
			calls++
			got = m
		},
	}
	e := compose(t, Options{Shortcuts: []Shortcut{sum}})

	typeText(e, "x 1+2=")

	require.Equal(t, 1, calls)
	require.Equal(t, []string{"1+2", "1", "2"}, got.Before)
	require.Equal(t, "1+2", got.Text)
	require.Equal(t, "x 1+2", e.String(document.Path{0}))
}

func TestExpandedSelectionSkipsShortcuts(t *testing.T) {
	e := compose(t, Options{Shortcuts: Defaults()}, document.Paragraph("#ab"))
	require.NoError(t, e.Select(document.Range{
		Anchor: document.Point{Path: document.Path{0, 0}, Offset: 1},
		Focus:  document.Point{Path: document.Path{0, 0}, Offset: 3},
	}))

	e.InsertText(" ")

	require.Equal(t, document.DefaultBlockType, firstType(e))
}

func TestDefaultsFor_ListType(t *testing.T) {
	e := compose(t, Options{Shortcuts: DefaultsFor(lists.NumberedList)})

	typeText(e, "- ")

	require.Equal(t, lists.NumberedList, firstType(e))
}

func TestFence(t *testing.T) {
	tests := []struct {
		typed    string
		language string
	}{
		{"``` ", codeblock.DefaultLanguage},
		{"```go ", "go"},
	}
	for _, tt := range tests {
		t.Run(tt.typed, func(t *testing.T) {
			e := compose(t, Options{Shortcuts: Defaults()})

			typeText(e, tt.typed)

			code := document.AsElement(e.Children()[0])
			require.Equal(t, codeblock.Code, code.Type)
			require.Equal(t, tt.language, code.StringProp(codeblock.PropLanguage))
			require.Equal(t, codeblock.CodeLine, document.AsElement(code.Children[0]).Type)
			require.Equal(t, "", e.String(document.Path{0}))
		})
	}
}

func TestFence_ConfiguredLanguageWins(t *testing.T) {
	e := compose(t, Options{Shortcuts: append([]Shortcut{Fence("python")}, Defaults()...)})

	typeText(e, "``` ")

	require.Equal(t, "python", document.AsElement(e.Children()[0]).StringProp(codeblock.PropLanguage))
}

func TestFence_NotAtBlockStart(t *testing.T) {
	e := compose(t, Options{Shortcuts: Defaults()})

	typeText(e, "a```x ")

	require.Equal(t, document.DefaultBlockType, firstType(e))
}
