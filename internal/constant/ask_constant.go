package constant

// Stage name carried in action-start events so the client can label the
// process it is watching.
const ActionGenBetterQuestion = "gen-better-question"

// Correlation id prefixes.
const (
	IdPrefixAsk    = "ask"
	IdPrefixAction = "action"
	IdPrefixAnswer = "answer"
)

// Status values carried by action-output notifications from the fan-out
// stage, before any chunked merge output starts.
const (
	StatusRequestingRewrites = "requesting-rewrites"
	StatusInitialRewriteDone = "initial-rewrite-done"
)

// DefaultWhy is the fallback reason used when the caller omits why.
const DefaultWhy = "I am just trying to understand more about this topic. I do not have a larger goal and the topic was simply interesting."
