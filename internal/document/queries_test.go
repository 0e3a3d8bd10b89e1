package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeforeAfter_Units(t *testing.T) {
	ed := New(Paragraph("héllo wörld"), Paragraph("x"))
	end := Point{Path: Path{0, 0}, Offset: len("héllo wörld")}

	tests := []struct {
		name    string
		from    Point
		unit    Unit
		reverse bool
		want    Point
	}{
		{"char after ascii", Point{Path: Path{0, 0}}, UnitCharacter, false, Point{Path: Path{0, 0}, Offset: 1}},
		{"char after multibyte", Point{Path: Path{0, 0}, Offset: 1}, UnitCharacter, false, Point{Path: Path{0, 0}, Offset: 3}},
		{"word after", Point{Path: Path{0, 0}}, UnitWord, false, Point{Path: Path{0, 0}, Offset: len("héllo")}},
		{"word before", end, UnitWord, true, Point{Path: Path{0, 0}, Offset: len("héllo ")}},
		{"block boundary", end, UnitCharacter, false, Point{Path: Path{1, 0}}},
		{"line before", end, UnitLine, true, Point{Path: Path{0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Point
			var ok bool
			if tt.reverse {
				got, ok = ed.Before(tt.from, tt.unit)
			} else {
				got, ok = ed.After(tt.from, tt.unit)
			}
			require.True(t, ok)
			require.Equal(t, tt.want, got)
		})
	}

	_, ok := ed.Before(Point{Path: Path{0, 0}}, UnitCharacter)
	require.False(t, ok, "nothing before the document start")
}

func TestNodes_Modes(t *testing.T) {
	ed := New(NewElement("quote", NewElement("quote", Paragraph("a"))), Paragraph("b"))
	all := Range{Anchor: Point{Path: Path{0, 0, 0, 0}}, Focus: Point{Path: Path{1, 0}, Offset: 1}}

	paths := func(entries []NodeEntry) []Path {
		var out []Path
		for _, e := range entries {
			out = append(out, e.Path)
		}
		return out
	}

	quotes := MatchType("quote")
	require.Equal(t, []Path{{0}, {0, 0}}, paths(ed.Nodes(NodesOptions{At: all, Match: quotes})))
	require.Equal(t, []Path{{0}}, paths(ed.Nodes(NodesOptions{At: all, Match: quotes, Mode: ModeHighest})))
	require.Equal(t, []Path{{0, 0}}, paths(ed.Nodes(NodesOptions{At: all, Match: quotes, Mode: ModeLowest})))

	blocks := paths(ed.Nodes(NodesOptions{At: all, Match: ed.MatchBlock(), Mode: ModeLowest}))
	require.Equal(t, []Path{{0, 0, 0}, {1}}, blocks)

	reversed := paths(ed.Nodes(NodesOptions{At: all, Match: MatchText, Reverse: true}))
	require.Equal(t, []Path{{1, 0}, {0, 0, 0, 0}}, reversed)
}

func TestAbove(t *testing.T) {
	ed := New(NewElement("quote", Paragraph("a")))

	e, ok := ed.Above(AboveOptions{At: Point{Path: Path{0, 0, 0}}, Match: ed.MatchBlock()})
	require.True(t, ok)
	require.Equal(t, Path{0, 0}, e.Path)

	e, ok = ed.Above(AboveOptions{At: Path{0, 0, 0}, Match: ed.MatchBlock(), Mode: ModeHighest})
	require.True(t, ok)
	require.Equal(t, Path{0}, e.Path)

	_, ok = ed.Above(AboveOptions{At: Path{0}, Match: ed.MatchBlock()})
	require.False(t, ok)
}

func TestString_Range(t *testing.T) {
	ed := New(Paragraph("hello"), Paragraph("world"))
	r := Range{Anchor: Point{Path: Path{1, 0}, Offset: 3}, Focus: Point{Path: Path{0, 0}, Offset: 3}}

	require.Equal(t, "lowor", ed.String(r))
	require.Equal(t, "world", ed.String(Path{1}))
}

func TestPreviousNext_Blocks(t *testing.T) {
	ed := New(Paragraph("a"), Paragraph("b"), Paragraph("c"))

	prev, ok := ed.Previous(Path{1}, nil, ModeAll)
	require.True(t, ok)
	require.Equal(t, Path{0}, prev.Path)

	next, ok := ed.Next(Path{1}, nil, ModeAll)
	require.True(t, ok)
	require.Equal(t, Path{2}, next.Path)

	_, ok = ed.Previous(Path{0}, nil, ModeAll)
	require.False(t, ok)
}

func TestMarks_FromLeaf(t *testing.T) {
	ed := New(NewElement(DefaultBlockType, NewText("a", Props{"bold": true}), NewText("b")))
	require.NoError(t, ed.Select(Point{Path: Path{0, 1}, Offset: 0}))

	require.Equal(t, Props{"bold": true}, ed.Marks())
}
