package dto

// AskRequest is the inbound payload of one ask session. Why is optional and
// is defaulted by the service; the request is immutable once the session
// starts.
type AskRequest struct {
	Query string  `json:"query" validate:"required"`
	Why   *string `json:"why"`
}

// EventMeta correlates a stream event with its session. Session-level
// events carry the instance id under "id", stage-level events under
// "instanceId".
type EventMeta struct {
	Id         string `json:"id,omitempty"`
	InstanceId string `json:"instanceId,omitempty"`
}

// AskLifecyclePayload is the data of ask-started and ask-ended.
type AskLifecyclePayload struct {
	Meta EventMeta `json:"meta"`
}

// ActionStartPayload announces a named stage.
type ActionStartPayload struct {
	Name string    `json:"name"`
	Id   string    `json:"id"`
	Meta EventMeta `json:"meta"`
}

// ActionStatusOutput is the structured output of a fan-out notification.
type ActionStatusOutput struct {
	Status string   `json:"status"`
	Count  int      `json:"count,omitempty"`
	Output []string `json:"output,omitempty"`
}

// ActionOutputPayload carries partial or full stage data: either a
// structured Output or an accumulated text Chunk, never both.
type ActionOutputPayload struct {
	Id     string      `json:"id"`
	Output interface{} `json:"output,omitempty"`
	Chunk  string      `json:"chunk,omitempty"`
	Meta   EventMeta   `json:"meta"`
}

// ActionEndPayload closes a stage with its complete final text.
type ActionEndPayload struct {
	Id     string    `json:"id"`
	Output string    `json:"output"`
	Meta   EventMeta `json:"meta"`
}

// AnswerLifecyclePayload is the data of answer-start and answer-stop.
type AnswerLifecyclePayload struct {
	Id   string    `json:"id"`
	Meta EventMeta `json:"meta"`
}

// AnswerOutputPayload carries one answer delta or a thinking-mode toggle
// (the chunk is then the literal sentinel).
type AnswerOutputPayload struct {
	Id    string    `json:"id"`
	Chunk string    `json:"chunk"`
	Meta  EventMeta `json:"meta"`
}

// EventError is the error body of action-error and answer-error.
type EventError struct {
	Message string `json:"message"`
}

// StageErrorPayload reports a failed stage before the session is closed.
type StageErrorPayload struct {
	Id    string     `json:"id"`
	Error EventError `json:"error"`
	Meta  EventMeta  `json:"meta"`
}
