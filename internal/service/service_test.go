package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flowcanvas/internal/catalog"
	"flowcanvas/internal/codec"
	"flowcanvas/internal/controls"
	"flowcanvas/internal/dag"
	"flowcanvas/internal/domain"
	"flowcanvas/internal/repository"
	"flowcanvas/internal/repository/sqlite"
	"flowcanvas/internal/store"
	"flowcanvas/internal/submission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeSubmitter answers with a fixed outcome, or analyzes locally and
// flags the result offline when offline is set.
type fakeSubmitter struct {
	offline bool
	calls   int
}

func (f *fakeSubmitter) Submit(_ context.Context, g domain.Graph) submission.Outcome {
	f.calls++
	if f.offline {
		return submission.Outcome{Result: dag.AnalyzeGraph(g), Offline: true, Err: errors.New("connection refused")}
	}
	return submission.Outcome{Result: dag.Result{NumNodes: len(g.Nodes), NumEdges: len(g.Edges), IsDag: true}}
}

type fixture struct {
	svc  *PipelineService
	repo *sqlite.Repository
	sub  *fakeSubmitter
	bus  *EventBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	st := store.New(store.Options{FieldDebounce: time.Hour, Logger: logger})
	repo, err := sqlite.New(sqlite.MemoryDSN)
	require.NoError(t, err)
	sub := &fakeSubmitter{}
	bus := NewEventBus()

	svc := NewPipelineService(st, repo, sub, bus, logger)
	t.Cleanup(func() {
		svc.Close()
		st.Close()
		repo.Close()
	})
	return &fixture{svc: svc, repo: repo, sub: sub, bus: bus}
}

func (f *fixture) buildChain(t *testing.T) (in, llm domain.Node) {
	t.Helper()
	var err error
	in, err = f.svc.CreateNode(domain.NodeKindInput, domain.Position{})
	require.NoError(t, err)
	llm, err = f.svc.CreateNode(domain.NodeKindLLM, domain.NewPosition(200, 0))
	require.NoError(t, err)
	_, err = f.svc.Connect(domain.Connection{
		Source: in.ID, SourceHandle: catalog.HandleID(in.ID, "value"),
		Target: llm.ID, TargetHandle: catalog.HandleID(llm.ID, "prompt"),
	})
	require.NoError(t, err)
	return in, llm
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	ch := make(chan Event, 1)
	bus.Subscribe(ch)

	bus.Publish(Event{Type: EventSubmitted})
	bus.Publish(Event{Type: EventAnalyzed}) // dropped: buffer full

	got := <-ch
	assert.Equal(t, EventSubmitted, got.Type)
	assert.Empty(t, ch)

	bus.Unsubscribe(ch)
	bus.Publish(Event{Type: EventSubmitted})
	assert.Empty(t, ch)
}

func TestStoreEventsForwarded(t *testing.T) {
	f := newFixture(t)
	ch := make(chan Event, 8)
	f.bus.Subscribe(ch)

	_, err := f.svc.CreateNode(domain.NodeKindText, domain.Position{})
	require.NoError(t, err)

	ev := <-ch
	assert.Equal(t, EventGraphChanged, ev.Type)
	payload, ok := ev.Payload.(store.Event)
	require.True(t, ok)
	assert.Equal(t, store.EventNodeAdded, payload.Kind)
	assert.Equal(t, 1, payload.NumNodes)
}

func TestGetGraph(t *testing.T) {
	f := newFixture(t)
	_, emptyFP := f.svc.GetGraph()

	f.buildChain(t)
	g, fp := f.svc.GetGraph()
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)
	assert.NotEqual(t, emptyFP, fp)
	assert.Equal(t, g.Fingerprint(), fp)
}

func TestShortcut(t *testing.T) {
	f := newFixture(t)
	_, llm := f.buildChain(t)

	res, err := f.svc.Shortcut(controls.KeyEvent{Key: "z", Ctrl: true})
	require.NoError(t, err)
	assert.Equal(t, ShortcutResult{Action: controls.ActionUndo, Applied: true}, res)
	g, _ := f.svc.GetGraph()
	assert.Empty(t, g.Edges)

	res, err = f.svc.Shortcut(controls.KeyEvent{Key: "y", Meta: true})
	require.NoError(t, err)
	assert.Equal(t, ShortcutResult{Action: controls.ActionRedo, Applied: true}, res)

	res, err = f.svc.Shortcut(controls.KeyEvent{Key: "Delete"})
	require.NoError(t, err)
	assert.Equal(t, ShortcutResult{Action: controls.ActionDeleteSelected, Applied: false}, res)

	require.NoError(t, f.svc.ApplyNodeChanges([]domain.NodeChange{{Type: domain.ChangeSelect, ID: llm.ID, Selected: true}}))

	res, err = f.svc.Shortcut(controls.KeyEvent{Key: "Backspace", InTextField: true})
	require.NoError(t, err)
	assert.Equal(t, controls.ActionNone, res.Action)

	res, err = f.svc.Shortcut(controls.KeyEvent{Key: "Backspace"})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	g, _ = f.svc.GetGraph()
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
}

func TestSubmitOnline(t *testing.T) {
	f := newFixture(t)
	f.buildChain(t)

	res := f.svc.Submit(context.Background())
	assert.False(t, res.Offline)
	assert.Empty(t, res.Error)
	assert.Equal(t, dag.Result{NumNodes: 2, NumEdges: 1, IsDag: true}, res.Result)

	n, err := f.repo.CountAnalyses(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "online results are recorded by the validator")
}

func TestSubmitOffline(t *testing.T) {
	f := newFixture(t)
	f.sub.offline = true
	in, llm := f.buildChain(t)

	ch := make(chan Event, 1)
	f.bus.Subscribe(ch)

	res := f.svc.Submit(context.Background())
	assert.True(t, res.Offline)
	assert.Equal(t, "connection refused", res.Error)
	assert.True(t, res.Result.IsDag)

	ev := <-ch
	assert.Equal(t, EventSubmitted, ev.Type)

	list, err := f.svc.ListAnalyses(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, repository.SourceLocal, list[0].Source)
	assert.Equal(t, []string{in.ID, llm.ID}, list[0].Order)
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("acyclic", func(t *testing.T) {
		pipeline := `{"nodes":[{"id":"A"},{"id":"B"},{"id":"C"}],"edges":[{"source":"A","target":"B"},{"source":"B","target":"C"}]}`
		a, err := f.svc.Analyze(ctx, pipeline)
		require.NoError(t, err)
		assert.Equal(t, 3, a.NumNodes)
		assert.Equal(t, 2, a.NumEdges)
		assert.True(t, a.IsDag)
		assert.Equal(t, []string{"A", "B", "C"}, a.Order)
		assert.NotEmpty(t, a.ID)
	})

	t.Run("cyclic", func(t *testing.T) {
		pipeline := `{"nodes":[{"id":"A"},{"id":"B"}],"edges":[{"source":"A","target":"B"},{"source":"B","target":"A"}]}`
		a, err := f.svc.Analyze(ctx, pipeline)
		require.NoError(t, err)
		assert.False(t, a.IsDag)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := f.svc.Analyze(ctx, `{"nodes": [`)
		assert.ErrorIs(t, err, ErrInvalidPipelineJSON)
	})

	t.Run("no nodes", func(t *testing.T) {
		_, err := f.svc.Analyze(ctx, `{"nodes": [], "edges": []}`)
		assert.ErrorIs(t, err, ErrEmptyPipeline)

		_, err = f.svc.Analyze(ctx, `{}`)
		assert.ErrorIs(t, err, ErrEmptyPipeline)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := f.svc.Analyze(ctx, `["not", "an", "object"]`)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidPipelineJSON)
	})

	list, err := f.svc.ListAnalyses(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2, "only successful analyses are recorded")
	for _, a := range list {
		assert.Equal(t, repository.SourceValidator, a.Source)
	}
}

func TestExportImport(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			src := newFixture(t)
			src.buildChain(t)

			data, contentType, err := src.svc.ExportBytes(format)
			require.NoError(t, err)
			assert.NotEmpty(t, contentType)

			dst := newFixture(t)
			res, err := dst.svc.Import(format, bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 2, res.Nodes)
			assert.Equal(t, 1, res.Edges)

			g, _ := dst.svc.GetGraph()
			assert.Len(t, g.Nodes, 2)
			assert.True(t, dst.svc.History().CanUndo, "import is undoable")

			next, err := dst.svc.CreateNode(domain.NodeKindLLM, domain.Position{})
			require.NoError(t, err)
			assert.Equal(t, "llm-2", next.ID, "IDs continue after imported nodes")
		})
	}
}

func TestImportRejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Import("toml", strings.NewReader(""))
	assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)

	_, err = f.svc.Import("json", strings.NewReader(`{"nodes":[{"id":"x-1","type":"spreadsheet"}]}`))
	assert.ErrorIs(t, err, catalog.ErrUnknownKind)

	_, err = f.svc.Import("json", strings.NewReader(`{"nodes":[{"id":"text-1","type":"text"}],"edges":[{"source":"text-1","target":"gone"}]}`))
	assert.Error(t, err)

	g, _ := f.svc.GetGraph()
	assert.Empty(t, g.Nodes)
	assert.False(t, f.svc.History().CanUndo)
}

func TestExportUnsupported(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, f.svc.Export("xml", &buf), codec.ErrUnsupportedFormat)
	require.NoError(t, f.svc.Export("json", &buf))
	assert.Contains(t, buf.String(), `"nodes": []`)
}

func TestImportFile(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "pipeline.yaml")
	doc := "nodes:\n  - {id: text-1, type: text, data: {text: hi}}\n  - {id: customOutput-1, type: customOutput}\nedges:\n  - {from: text-1, from_handle: text-1-output, to: customOutput-1, to_handle: customOutput-1-value}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	res, err := f.svc.ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", res.Format)
	assert.Equal(t, 2, res.Nodes)
	assert.Equal(t, 1, res.Edges)

	_, err = f.svc.ImportFile(filepath.Join(dir, "pipeline.toml"))
	assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)

	_, err = f.svc.ImportFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
