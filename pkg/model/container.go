package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Container state names as they appear on the wire.
const (
	StateRunning    = "running"
	StateWaiting    = "waiting"
	StateTerminated = "terminated"
	StateUnknown    = "unknown"
)

// timeLayout renders timestamps with an explicit numeric offset ("+00:00"),
// which is what existing dashboard clients parse.
const timeLayout = "2006-01-02T15:04:05-07:00"

// FormatTime renders t in the dashboard timestamp layout.
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// ContainerState is the lifecycle state of a single container.
// A value is always exactly one of Running, Waiting, Terminated or Unknown.
type ContainerState interface {
	// Name returns the wire name of the state.
	Name() string
	isContainerState()
}

// Running is the state of a container that has started.
type Running struct {
	StartedAt *time.Time
}

// Waiting is the state of a container that has not started yet.
type Waiting struct {
	Reason  string
	Message string
}

// Terminated is the state of a container that has exited.
type Terminated struct {
	Reason   string
	Message  string
	ExitCode int32
}

// Unknown is used when the runtime reported no state at all.
type Unknown struct{}

func (Running) Name() string    { return StateRunning }
func (Waiting) Name() string    { return StateWaiting }
func (Terminated) Name() string { return StateTerminated }
func (Unknown) Name() string    { return StateUnknown }

func (Running) isContainerState()    {}
func (Waiting) isContainerState()    {}
func (Terminated) isContainerState() {}
func (Unknown) isContainerState()    {}

// ContainerStatus is the runtime state of one container within a pod.
type ContainerStatus struct {
	Name         string
	State        ContainerState
	Ready        bool
	RestartCount int32
	Image        string
}

// containerStatusJSON is the flattened wire shape of ContainerStatus.
type containerStatusJSON struct {
	Name         string  `json:"name"`
	State        string  `json:"state"`
	Ready        bool    `json:"ready"`
	RestartCount int32   `json:"restart_count"`
	Image        string  `json:"image"`
	Reason       *string `json:"reason"`
	Message      *string `json:"message"`
	StartedAt    *string `json:"started_at"`
}

// MarshalJSON flattens the state variant into state/reason/message/started_at.
func (c ContainerStatus) MarshalJSON() ([]byte, error) {
	out := containerStatusJSON{
		Name:         c.Name,
		Ready:        c.Ready,
		RestartCount: c.RestartCount,
		Image:        c.Image,
	}

	switch s := c.State.(type) {
	case Running:
		out.State = StateRunning
		if s.StartedAt != nil {
			ts := FormatTime(*s.StartedAt)
			out.StartedAt = &ts
		}
	case Waiting:
		out.State = StateWaiting
		out.Reason = nonEmpty(s.Reason)
		out.Message = nonEmpty(s.Message)
	case Terminated:
		out.State = StateTerminated
		out.Reason = nonEmpty(s.Reason)
		out.Message = nonEmpty(s.Message)
	default:
		out.State = StateUnknown
	}

	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the state variant from the flattened wire shape.
// Exit codes are not part of the wire shape and come back as zero.
func (c *ContainerStatus) UnmarshalJSON(data []byte) error {
	var in containerStatusJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	c.Name = in.Name
	c.Ready = in.Ready
	c.RestartCount = in.RestartCount
	c.Image = in.Image

	switch in.State {
	case StateRunning:
		r := Running{}
		if in.StartedAt != nil {
			t, err := time.Parse(timeLayout, *in.StartedAt)
			if err != nil {
				return fmt.Errorf("container %q: started_at: %w", in.Name, err)
			}
			r.StartedAt = &t
		}
		c.State = r
	case StateWaiting:
		c.State = Waiting{Reason: deref(in.Reason), Message: deref(in.Message)}
	case StateTerminated:
		c.State = Terminated{Reason: deref(in.Reason), Message: deref(in.Message)}
	default:
		c.State = Unknown{}
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
