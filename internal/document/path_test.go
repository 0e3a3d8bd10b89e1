package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPath_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Path
		want int
	}{
		{"equal", Path{0, 1}, Path{0, 1}, 0},
		{"before", Path{0, 1}, Path{0, 2}, -1},
		{"after", Path{1}, Path{0, 5}, 1},
		{"ancestor", Path{0}, Path{0, 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestPath_Relations(t *testing.T) {
	require.True(t, Path{0}.IsAncestor(Path{0, 1}))
	require.False(t, Path{0, 1}.IsAncestor(Path{0, 1}))
	require.True(t, Path{0, 1}.IsCommon(Path{0, 1}))
	require.True(t, Path{0}.IsParent(Path{0, 2}))
	require.True(t, Path{0, 1}.IsSibling(Path{0, 3}))
	require.False(t, Path{0, 1}.IsSibling(Path{1, 1}))
	require.True(t, Path{0, 1}.EndsBefore(Path{0, 2, 4}))
	require.False(t, Path{0, 1}.EndsBefore(Path{0}))
	require.Equal(t, Path{0, 2}, Path{0, 1}.Next())
	require.Equal(t, Path{1}, Path{1, 4}.Common(Path{1, 2, 0}))

	_, err := Path{0, 0}.Previous()
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestPath_Transform(t *testing.T) {
	tests := []struct {
		name string
		path Path
		op   Operation
		want Path
		gone bool
	}{
		{
			name: "insert before shifts",
			path: Path{1, 0},
			op:   Operation{Type: OpInsertNode, Path: Path{0}},
			want: Path{2, 0},
		},
		{
			name: "insert after leaves",
			path: Path{1},
			op:   Operation{Type: OpInsertNode, Path: Path{2}},
			want: Path{1},
		},
		{
			name: "remove ancestor",
			path: Path{1, 2},
			op:   Operation{Type: OpRemoveNode, Path: Path{1}},
			gone: true,
		},
		{
			name: "remove earlier sibling",
			path: Path{3},
			op:   Operation{Type: OpRemoveNode, Path: Path{1}},
			want: Path{2},
		},
		{
			name: "merge into previous",
			path: Path{1, 2},
			op:   Operation{Type: OpMergeNode, Path: Path{1}, Position: 3},
			want: Path{0, 5},
		},
		{
			name: "split moves later children",
			path: Path{0, 4},
			op:   Operation{Type: OpSplitNode, Path: Path{0}, Position: 2},
			want: Path{1, 2},
		},
		{
			name: "split keeps earlier children",
			path: Path{0, 1},
			op:   Operation{Type: OpSplitNode, Path: Path{0}, Position: 2},
			want: Path{0, 1},
		},
		{
			name: "move node itself",
			path: Path{0, 1},
			op:   Operation{Type: OpMoveNode, Path: Path{0}, NewPath: Path{2}},
			want: Path{2, 1},
		},
		{
			name: "move shifts siblings",
			path: Path{1},
			op:   Operation{Type: OpMoveNode, Path: Path{0}, NewPath: Path{2}},
			want: Path{0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.path.Transform(tt.op, AffinityForward)
			if tt.gone {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestOperation_InverseRestoresTree(t *testing.T) {
	root := NewElement("", Paragraph("ab"), Paragraph("cd"))
	want := root.Clone()

	ops := []Operation{
		{Type: OpInsertText, Path: Path{0, 0}, Offset: 1, Text: "xy"},
		{Type: OpSplitNode, Path: Path{1, 0}, Position: 1},
		{Type: OpMoveNode, Path: Path{0}, NewPath: Path{1}},
		{Type: OpSetNode, Path: Path{0}, Properties: Props{PropType: "paragraph"}, NewProperties: Props{PropType: "h1"}},
	}
	for _, op := range ops {
		require.NoError(t, applyToTree(root, op))
	}
	for i := len(ops) - 1; i >= 0; i-- {
		require.NoError(t, applyToTree(root, ops[i].Inverse()))
	}
	require.True(t, Equal(want, root))
}
