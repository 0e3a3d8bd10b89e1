package commands

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usekona/kona/internal/document"
)

func leaf(name, title string) Command {
	return Command{
		Name:        name,
		Title:       title,
		CommandName: strings.ToLower(title),
		Action:      func(Actions, *document.Editor) {},
	}
}

func submenu(name, title string, fn func(ctx context.Context, gc GetCommandsContext) ([]Command, error)) Command {
	return Command{Name: name, Title: title, CommandName: strings.ToLower(title), GetCommands: fn}
}

func static(children ...Command) func(context.Context, GetCommandsContext) ([]Command, error) {
	return func(context.Context, GetCommandsContext) ([]Command, error) { return children, nil }
}

func names(st State) []string {
	out := []string{}
	for _, c := range st.Commands {
		out = append(out, c.Command.Name)
	}
	return out
}

func await(t *testing.T, req Request) State {
	t.Helper()
	select {
	case st := <-req.Done:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("request did not settle")
		return State{}
	}
}

func resolve(t *testing.T, r *Resolver, root []Command, filter string, path ...PathEntry) State {
	t.Helper()
	return await(t, r.Resolve(context.Background(), Params{Root: root, Filter: filter, Path: path}))
}

func advancedRoot() []Command {
	return []Command{
		leaf("paragraph", "Paragraph"),
		submenu("advanced", "Advanced", static(leaf("code", "Code"), leaf("quote", "Quote"))),
	}
}

func TestResolve_BrowseLeaves(t *testing.T) {
	root := []Command{leaf("paragraph", "Paragraph"), leaf("code", "Code")}

	st := resolve(t, NewResolver(), root, "")

	require.Equal(t, []string{"paragraph", "code"}, names(st))
	require.False(t, st.IsLoading)
	require.False(t, st.IsError)
	for _, c := range st.Commands {
		require.False(t, c.IsSubmenu)
		require.Empty(t, c.Breadcrumb)
	}
}

func TestResolve_BrowseSubmenu(t *testing.T) {
	root := advancedRoot()

	st := resolve(t, NewResolver(), root, "", root[1].PathEntry())

	require.Equal(t, []string{"code", "quote"}, names(st))
	require.False(t, st.Commands[0].IsSubmenu)
	require.False(t, st.Commands[1].IsSubmenu)
	require.Equal(t, "advanced/code", st.Commands[0].Key)
	require.Equal(t, []PathEntry{
		{Name: "advanced", Title: "Advanced", CommandName: "advanced"},
		{Name: "code", Title: "Code", CommandName: "code"},
	}, st.Commands[0].Path)
}

func TestResolve_BrowseRootMarksSubmenus(t *testing.T) {
	st := resolve(t, NewResolver(), advancedRoot(), "")

	require.Equal(t, []string{"paragraph", "advanced"}, names(st))
	require.False(t, st.Commands[0].IsSubmenu)
	require.True(t, st.Commands[1].IsSubmenu)
}

func TestResolve_BrowseAsyncSubmenu(t *testing.T) {
	root := []Command{submenu("remote", "Remote", func(ctx context.Context, _ GetCommandsContext) ([]Command, error) {
		select {
		case <-time.After(10 * time.Millisecond):
			return []Command{leaf("code", "Code")}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})}

	st := resolve(t, NewResolver(), root, "", root[0].PathEntry())

	require.Equal(t, []string{"code"}, names(st))
}

func TestResolve_UnknownPathIsEmpty(t *testing.T) {
	root := advancedRoot()

	tests := []struct {
		name string
		path []PathEntry
	}{
		{"missing step", []PathEntry{{Name: "missing"}}},
		{"leaf step", []PathEntry{{Name: "paragraph"}}},
		{"missing nested step", []PathEntry{{Name: "advanced"}, {Name: "nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := resolve(t, NewResolver(), root, "", tt.path...)
			require.Empty(t, st.Commands)
			require.False(t, st.IsError)
		})
	}
}

func TestResolve_SearchFindsNestedLeaf(t *testing.T) {
	st := resolve(t, NewResolver(), advancedRoot(), "cod")

	require.Equal(t, []string{"code"}, names(st))
	require.Equal(t, "Advanced", st.Commands[0].Breadcrumb)
	require.Equal(t, "advanced/code", st.Commands[0].Key)
}

func TestResolve_SearchMatchesSubmenu(t *testing.T) {
	st := resolve(t, NewResolver(), advancedRoot(), "ADV")

	require.Equal(t, []string{"advanced"}, names(st))
	require.True(t, st.Commands[0].IsSubmenu)
}

func TestResolve_SearchMatchesTitleOrCommandName(t *testing.T) {
	root := []Command{
		{Name: "h1", Title: "Heading 1", CommandName: "title", Action: func(Actions, *document.Editor) {}},
		{Name: "h2", Title: "Subtitle", CommandName: "heading2", Action: func(Actions, *document.Editor) {}},
		{Name: "noop", Title: "Heading without action", CommandName: "heading"},
	}

	st := resolve(t, NewResolver(), root, "heading")

	require.Equal(t, []string{"h1", "h2"}, names(st))
}

func TestResolve_SearchWithinPath(t *testing.T) {
	root := []Command{
		leaf("code-root", "Code block"),
		submenu("advanced", "Advanced", static(leaf("code", "Code"), leaf("quote", "Quote"))),
	}

	st := resolve(t, NewResolver(), root, "code", root[1].PathEntry())

	require.Equal(t, []string{"code"}, names(st))
}

func TestResolve_SearchWithinPathPassesFilterAsQuery(t *testing.T) {
	var queries []string
	root := []Command{submenu("remote", "Remote", func(_ context.Context, gc GetCommandsContext) ([]Command, error) {
		queries = append(queries, gc.Query)
		if gc.Query == "" {
			return nil, nil
		}
		return []Command{leaf("hit", "Hit "+gc.Query)}, nil
	})}
	r := NewResolver()

	st := resolve(t, r, root, "zz", root[0].PathEntry())
	require.Equal(t, []string{"zz"}, queries)
	require.Equal(t, []string{"hit"}, names(st))

	st = resolve(t, r, root, "", root[0].PathEntry())
	require.Equal(t, []string{"zz", ""}, queries)
	require.Empty(t, st.Commands)
}

func TestResolve_Current(t *testing.T) {
	r := NewResolver()

	first := r.Resolve(context.Background(), Params{Root: advancedRoot()})
	require.True(t, r.Current(first.Generation))
	await(t, first)

	second := r.Resolve(context.Background(), Params{Root: advancedRoot()})
	require.False(t, r.Current(first.Generation))
	require.True(t, r.Current(second.Generation))
	await(t, second)
}

func TestResolve_SearchPassesFilterAsQuery(t *testing.T) {
	var queries []string
	root := []Command{submenu("remote", "Remote", func(_ context.Context, gc GetCommandsContext) ([]Command, error) {
		queries = append(queries, gc.Query)
		return []Command{leaf("hit", "Hit "+gc.Query)}, nil
	})}

	st := resolve(t, NewResolver(), root, "zz")

	require.Equal(t, []string{"zz"}, queries)
	require.Equal(t, []string{"hit"}, names(st))
}

func TestResolve_GetCommandsContext(t *testing.T) {
	ed := document.New(document.Paragraph(""))
	var got GetCommandsContext
	inner := submenu("inner", "Inner", func(_ context.Context, gc GetCommandsContext) ([]Command, error) {
		got = gc
		return nil, nil
	})
	root := []Command{submenu("outer", "Outer", static(inner))}

	req := NewResolver().Resolve(context.Background(), Params{
		Root:   root,
		Path:   []PathEntry{{Name: "outer"}, {Name: "inner"}},
		Editor: ed,
	})
	st := await(t, req)

	require.Empty(t, st.Commands)
	require.False(t, st.IsError)
	require.Equal(t, "", got.Query)
	require.Same(t, ed, got.Editor)
	require.Equal(t, "inner", got.Parent.Name)
	require.Equal(t, []PathEntry{
		{Name: "outer", Title: "Outer", CommandName: "outer"},
		{Name: "inner", Title: "Inner", CommandName: "inner"},
	}, got.Path)
}

func TestResolve_FetchesOncePerQueryAndPath(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	root := []Command{submenu("remote", "Remote", func(context.Context, GetCommandsContext) ([]Command, error) {
		calls.Add(1)
		<-gate
		return []Command{leaf("x", "X")}, nil
	})}
	r := NewResolver()

	first := r.Resolve(context.Background(), Params{Root: root, Filter: "x"})
	second := r.Resolve(context.Background(), Params{Root: root, Filter: "x"})
	close(gate)
	await(t, first)
	st := await(t, second)
	require.Equal(t, []string{"x"}, names(st))

	st = resolve(t, r, root, "x")
	require.Equal(t, []string{"x"}, names(st))
	require.Equal(t, int32(1), calls.Load())

	resolve(t, r, root, "y")
	require.Equal(t, int32(2), calls.Load())
}

func TestResolve_FailureIsCached(t *testing.T) {
	var calls atomic.Int32
	root := []Command{submenu("remote", "Remote", func(context.Context, GetCommandsContext) ([]Command, error) {
		calls.Add(1)
		return nil, errors.New("backend down")
	})}
	r := NewResolver()

	for i := 0; i < 2; i++ {
		st := resolve(t, r, root, "", root[0].PathEntry())
		require.True(t, st.IsError)
		require.False(t, st.IsLoading)
		require.Empty(t, st.Commands)
	}
	require.Equal(t, int32(1), calls.Load())
	require.True(t, r.State().IsError)
}

func TestResolve_PanickingProducerIsAnError(t *testing.T) {
	root := []Command{submenu("remote", "Remote", func(context.Context, GetCommandsContext) ([]Command, error) {
		panic("bad producer")
	})}

	st := resolve(t, NewResolver(), root, "", root[0].PathEntry())

	require.True(t, st.IsError)
}

func TestResolve_StaleResultDiscarded(t *testing.T) {
	resultA := make(chan []Command)
	resultB := make(chan []Command)
	root := []Command{submenu("remote", "Remote", func(_ context.Context, gc GetCommandsContext) ([]Command, error) {
		if gc.Query == "a" {
			return <-resultA, nil
		}
		return <-resultB, nil
	})}
	r := NewResolver()

	first := r.Resolve(context.Background(), Params{Root: root, Filter: "a"})
	second := r.Resolve(context.Background(), Params{Root: root, Filter: "b"})
	require.Greater(t, second.Generation, first.Generation)

	resultB <- []Command{{Name: "b", Title: "Result B", CommandName: "b", Action: func(Actions, *document.Editor) {}}}
	require.Equal(t, []string{"b"}, names(await(t, second)))

	resultA <- []Command{{Name: "a", Title: "Result A", CommandName: "a", Action: func(Actions, *document.Editor) {}}}
	require.Equal(t, []string{"b"}, names(await(t, first)))
	require.Equal(t, []string{"b"}, names(r.State()))
}

func TestResolve_ClearsCommandsWhileLoading(t *testing.T) {
	release := make(chan struct{})
	root := []Command{
		leaf("paragraph", "Paragraph"),
		submenu("remote", "Remote", func(_ context.Context, gc GetCommandsContext) ([]Command, error) {
			if gc.Query != "" {
				<-release
			}
			return []Command{leaf("code", "Code")}, nil
		}),
	}
	r := NewResolver()
	initial := resolve(t, r, root, "")
	require.NotEmpty(t, initial.Commands)

	req := r.Resolve(context.Background(), Params{Root: root, Filter: "code"})
	require.True(t, req.State.IsLoading)
	require.Empty(t, req.State.Commands)
	require.True(t, r.State().IsLoading)

	close(release)
	settled := await(t, req)
	require.False(t, settled.IsLoading)
	require.Equal(t, []string{"code"}, names(settled))
}

func TestResolve_CancelledWaitLeavesProducerRunning(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool
	root := []Command{submenu("remote", "Remote", func(context.Context, GetCommandsContext) ([]Command, error) {
		<-release
		finished.Store(true)
		return []Command{leaf("late", "Late")}, nil
	})}
	r := NewResolver()
	ctx, cancel := context.WithCancel(context.Background())

	req := r.Resolve(ctx, Params{Root: root, Path: []PathEntry{{Name: "remote"}}})
	cancel()
	st := await(t, req)

	require.False(t, st.IsLoading)
	require.False(t, st.IsError)
	require.Empty(t, st.Commands)

	close(release)
	require.Eventually(t, finished.Load, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(resolve(t, r, root, "", PathEntry{Name: "remote"}).Commands) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestResolve_SelfReferencingSubmenuTerminates(t *testing.T) {
	var loop Command
	loop = submenu("loop", "Loop", func(context.Context, GetCommandsContext) ([]Command, error) {
		return []Command{loop}, nil
	})

	st := resolve(t, NewResolver(), []Command{loop}, "loop")

	require.Len(t, st.Commands, maxSearchDepth+1)
	require.Equal(t, "Loop / Loop", st.Commands[2].Breadcrumb)
}
