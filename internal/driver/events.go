package driver

import "time"

// Stage describes the step a file is in.
type Stage string

const (
	// StageLoad reads the file from disk.
	StageLoad Stage = "load"
	// StageRewrite runs the rewrite pipeline.
	StageRewrite Stage = "rewrite"
	// StageWrite writes the result back.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusCached indicates the cache proved the file up to date.
	StatusCached Status = "cached"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
