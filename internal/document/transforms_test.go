package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func texts(t *testing.T, n Node) []string {
	t.Helper()
	var out []string
	for _, ch := range AsElement(n).Children {
		out = append(out, TextContent(ch))
	}
	return out
}

func TestInsertText_AtSelection(t *testing.T) {
	ed := New(Paragraph("hello"))
	require.NoError(t, ed.Select(Point{Path: Path{0, 0}, Offset: 5}))

	ed.InsertText(" world")

	require.Equal(t, "hello world", TextContent(ed.Root()))
	require.Equal(t, Point{Path: Path{0, 0}, Offset: 11}, ed.Selection().Anchor)
}

func TestInsertBreak_SplitsBlock(t *testing.T) {
	ed := New(Paragraph("hello"))
	require.NoError(t, ed.Select(Point{Path: Path{0, 0}, Offset: 2}))

	ed.InsertBreak()

	require.Equal(t, []string{"he", "llo"}, texts(t, ed.Root()))
	require.Equal(t, DefaultBlockType, ed.Children()[1].(*Element).Type)
	require.Equal(t, Point{Path: Path{1, 0}, Offset: 0}, ed.Selection().Anchor)
}

func TestDeleteBackward_MergesBlocks(t *testing.T) {
	ed := New(Paragraph("ab"), Paragraph("cd"))
	require.NoError(t, ed.Select(Point{Path: Path{1, 0}, Offset: 0}))

	ed.DeleteBackward(context.Background(), UnitCharacter)

	require.Len(t, ed.Children(), 1)
	require.Equal(t, "abcd", TextContent(ed.Root()))
	require.Len(t, ed.Children()[0].(*Element).Children, 1)
	require.Equal(t, Point{Path: Path{0, 0}, Offset: 2}, ed.Selection().Anchor)
}

func TestDeleteBackward_Grapheme(t *testing.T) {
	ed := New(Paragraph("a👍🏽"))
	require.NoError(t, ed.Select(Point{Path: Path{0, 0}, Offset: len("a👍🏽")}))

	ed.DeleteBackward(context.Background(), UnitCharacter)

	require.Equal(t, "a", TextContent(ed.Root()))
}

func TestDeleteFragment_AcrossBlocks(t *testing.T) {
	ed := New(Paragraph("one"), Paragraph("two"), Paragraph("three"))
	require.NoError(t, ed.Select(Range{
		Anchor: Point{Path: Path{0, 0}, Offset: 1},
		Focus:  Point{Path: Path{2, 0}, Offset: 2},
	}))

	ed.DeleteFragment(context.Background(), Forward)

	require.Equal(t, []string{"oree"}, texts(t, ed.Root()))
	require.True(t, ed.Selection().IsCollapsed())
}

func TestRemoveNodes_SelectionFallsBack(t *testing.T) {
	ed := New(Paragraph("ab"), Paragraph("cd"))
	require.NoError(t, ed.Select(Point{Path: Path{1, 0}, Offset: 1}))

	require.NoError(t, ed.RemoveNodes(NodeOptions{At: Path{1}}))

	require.Equal(t, Point{Path: Path{0, 0}, Offset: 2}, ed.Selection().Anchor)
}

func TestRemoveNodes_LastNodeClearsSelection(t *testing.T) {
	ed := New(Paragraph("ab"))
	require.NoError(t, ed.Select(Point{Path: Path{0, 0}, Offset: 1}))

	require.NoError(t, ed.RemoveNodes(NodeOptions{At: Path{0}}))

	require.Nil(t, ed.Selection())
}

func TestWrapAndUnwrapNodes(t *testing.T) {
	ed := New(Paragraph("a"), Paragraph("b"))
	all := Range{Anchor: Point{Path: Path{0, 0}}, Focus: Point{Path: Path{1, 0}, Offset: 1}}

	require.NoError(t, ed.WrapNodes(NewElement("quote"), NodeOptions{At: all}))

	require.Len(t, ed.Children(), 1)
	quote := ed.Children()[0].(*Element)
	require.Equal(t, "quote", quote.Type)
	require.Equal(t, []string{"a", "b"}, texts(t, quote))

	require.NoError(t, ed.UnwrapNodes(NodeOptions{At: Path{0}}))

	require.Len(t, ed.Children(), 2)
	require.True(t, IsType(ed.Children()[0], DefaultBlockType))
	require.Equal(t, []string{"a", "b"}, texts(t, ed.Root()))
}

func TestLiftNodes_MiddleChildSplitsParent(t *testing.T) {
	ed := New(NewElement("quote", Paragraph("a"), Paragraph("b"), Paragraph("c")))

	require.NoError(t, ed.LiftNodes(NodeOptions{At: Path{0, 1}}))

	require.Len(t, ed.Children(), 3)
	require.True(t, IsType(ed.Children()[0], "quote"))
	require.True(t, IsType(ed.Children()[1], DefaultBlockType))
	require.True(t, IsType(ed.Children()[2], "quote"))
	require.Equal(t, []string{"a", "b", "c"}, texts(t, ed.Root()))
}

func TestMoveNodes_ToEnd(t *testing.T) {
	ed := New(Paragraph("a"), Paragraph("b"), Paragraph("c"))

	require.NoError(t, ed.MoveNodes(NodeOptions{At: Path{0}, To: Path{2}}))

	require.Equal(t, []string{"b", "c", "a"}, texts(t, ed.Root()))
}

func TestSetNodes_TypeAndUnset(t *testing.T) {
	ed := New(Paragraph("a"))

	require.NoError(t, ed.SetNodes(Props{PropType: "h1", "align": "center"}, NodeOptions{At: Path{0}}))
	el := ed.Children()[0].(*Element)
	require.Equal(t, "h1", el.Type)
	require.Equal(t, "center", el.StringProp("align"))

	require.NoError(t, ed.UnsetNodes([]string{"align"}, NodeOptions{At: Path{0}}))
	_, ok := el.Prop("align")
	require.False(t, ok)
}

func TestSetNodes_NoChangeNoOperation(t *testing.T) {
	ed := New(Paragraph("a"))
	require.NoError(t, ed.Normalize())

	var events int
	ed.OnChange(func(ChangeEvent) { events++ })
	require.NoError(t, ed.SetNodes(Props{PropType: DefaultBlockType}, NodeOptions{At: Path{0}}))

	require.Zero(t, events)
}

func TestAddMark_ExpandedSplitsText(t *testing.T) {
	ed := New(Paragraph("hello"))
	require.NoError(t, ed.Select(Range{
		Anchor: Point{Path: Path{0, 0}, Offset: 1},
		Focus:  Point{Path: Path{0, 0}, Offset: 4},
	}))

	require.NoError(t, ed.AddMark("bold", true))

	p := ed.Children()[0].(*Element)
	require.Equal(t, []string{"h", "ell", "o"}, texts(t, p))
	require.False(t, p.Children[0].(*Text).HasMark("bold"))
	require.True(t, p.Children[1].(*Text).HasMark("bold"))
	require.False(t, p.Children[2].(*Text).HasMark("bold"))
	require.Equal(t, "ell", ed.String(*ed.Selection()))
}

func TestAddMark_CollapsedAppliesToNextText(t *testing.T) {
	ed := New(Paragraph("ab"))
	require.NoError(t, ed.Select(Point{Path: Path{0, 0}, Offset: 1}))

	require.NoError(t, ed.AddMark("bold", true))
	require.Equal(t, Props{"bold": true}, ed.PendingMarks())
	ed.InsertText("X")

	p := ed.Children()[0].(*Element)
	require.Equal(t, []string{"a", "X", "b"}, texts(t, p))
	require.True(t, p.Children[1].(*Text).HasMark("bold"))
	require.Nil(t, ed.PendingMarks())
}

func TestSelect_ClearsPendingMarks(t *testing.T) {
	ed := New(Paragraph("ab"))
	require.NoError(t, ed.Select(Point{Path: Path{0, 0}, Offset: 1}))
	require.NoError(t, ed.AddMark("italic", true))

	require.NoError(t, ed.Select(Point{Path: Path{0, 0}, Offset: 2}))

	require.Nil(t, ed.PendingMarks())
}

func TestInsertFragment_BlocksIntoEmptyParagraph(t *testing.T) {
	ed := New(Paragraph(""))
	require.NoError(t, ed.Select(Point{Path: Path{0, 0}}))

	ed.InsertFragment([]Node{Paragraph("x"), Paragraph("y")})

	require.Equal(t, []string{"x", "y"}, texts(t, ed.Root()))
	require.Equal(t, Point{Path: Path{1, 0}, Offset: 1}, ed.Selection().Anchor)
}

func TestChangeEvents_OncePerEdit(t *testing.T) {
	ed := New(Paragraph("ab"), Paragraph("cd"))
	require.NoError(t, ed.Normalize())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := ed.Subscribe(ctx)

	var got []ChangeEvent
	ed.OnChange(func(ev ChangeEvent) { got = append(got, ev) })

	require.NoError(t, ed.MoveNodes(NodeOptions{At: Path{0}, To: Path{1}}))

	require.Len(t, got, 1)
	require.Len(t, got[0].Operations, 1)
	require.Equal(t, OpMoveNode, got[0].Operations[0].Type)

	select {
	case ev := <-ch:
		require.Len(t, ev.Payload.Operations, 1)
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for change event")
	}
}

func TestPathRef_TracksAcrossEdits(t *testing.T) {
	ed := New(Paragraph("a"), Paragraph("b"))
	ref := ed.PathRef(Path{1}, AffinityForward)

	require.NoError(t, ed.InsertNodes([]Node{Paragraph("z")}, NodeOptions{At: Path{0}}))
	p, ok := ref.Current()
	require.True(t, ok)
	require.Equal(t, Path{2}, p)

	require.NoError(t, ed.RemoveNodes(NodeOptions{At: Path{2}}))
	_, ok = ref.Unref()
	require.False(t, ok)
}
