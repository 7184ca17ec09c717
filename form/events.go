package form

import "github.com/tailored-agentic-units/formstate/observability"

const (
	EventFormCreate observability.EventType = "form.create"
	EventAction     observability.EventType = "form.action"
	EventNoUpdate   observability.EventType = "form.noop"
	EventValidate   observability.EventType = "form.validate"

	EventSubmitStart   observability.EventType = "submit.start"
	EventSubmitSucceed observability.EventType = "submit.succeed"
	EventSubmitFail    observability.EventType = "submit.fail"

	EventCheckpointSave   observability.EventType = "checkpoint.save"
	EventCheckpointLoad   observability.EventType = "checkpoint.load"
	EventCheckpointDelete observability.EventType = "checkpoint.delete"
)
