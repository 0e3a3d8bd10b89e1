package tracing

// Span names.
const (
	SpanResolve   = "commands.resolve"
	SpanFetch     = "commands.fetch"
	SpanNormalize = "editor.normalize"
)

// Span attribute keys.
const (
	AttrQuery       = "commands.query"
	AttrPath        = "commands.path"
	AttrGeneration  = "commands.generation"
	AttrResultCount = "commands.result_count"
	AttrStale       = "commands.stale"

	AttrNodeCount = "document.node_count"
	AttrOpCount   = "document.op_count"
)

// Event names.
const (
	EventCacheHit   = "cache.hit"
	EventSuperseded = "request.superseded"
)
