package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplace_RunsApplyMiddleware(t *testing.T) {
	ed := New(Paragraph("old"))
	var seen []OpType
	ed.WrapApply(func(next ApplyFunc) ApplyFunc {
		return func(op Operation) error {
			seen = append(seen, op.Type)
			if op.Type == OpInsertNode {
				if el := AsElement(op.Node); el != nil {
					op.Node = el.WithProps(Props{"seen": true})
				}
			}
			return next(op)
		}
	})

	require.NoError(t, ed.Replace(Paragraph("a"), NewElement("h1", NewText("b"))))

	require.Equal(t, []OpType{OpInsertNode, OpInsertNode}, seen)
	require.Len(t, ed.Children(), 2)
	require.Equal(t, "ab", TextContent(ed.Root()))
	for _, child := range ed.Children() {
		require.Equal(t, true, AsElement(child).Props["seen"])
	}
	require.Nil(t, ed.Selection())
}

func TestReplace_LeavesNormalizationToCaller(t *testing.T) {
	ed := New(Paragraph(""))
	require.NoError(t, ed.Normalize())
	var events int
	ed.OnChange(func(ChangeEvent) { events++ })

	require.NoError(t, ed.Replace(Paragraph("a"), Paragraph("b")))
	require.Zero(t, events)
	require.True(t, ed.dirty)

	require.NoError(t, ed.Normalize())
	require.Equal(t, 1, events)
}
