package sessionlog

import (
	"encoding/json"
	"io"
	"time"

	"github.com/kballard/go-shellquote"
)

// Event is one decoded line of the session event log.
type Event struct {
	Time  time.Time `json:"time"`
	Level string    `json:"level"`
	Msg   string    `json:"msg"`

	SessionID  string `json:"session_id"`
	ShellPid   int    `json:"shell_pid"`
	Argv       string `json:"argv"`
	Background bool   `json:"background"`
	Pid        int    `json:"pid"`
	Status     string `json:"status"`
	Enabled    bool   `json:"enabled"`
	Count      int    `json:"count"`
}

// ReadEvents parses a newline delimited JSON event log.
func ReadEvents(r io.Reader, handler func(e *Event)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			return err
		}

		handler(&event)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	Events        int        `json:"events"`
	UnknownEvents StrCounter `json:"unknown_events"`

	Commands   CommandReport    `json:"command_report"`
	Background BackgroundReport `json:"background_report"`
	Sessions   SessionIndex     `json:"sessions"`
}

func (r *Report) Update(e *Event) {
	r.Events++
	r.Sessions.update(e)

	switch e.Msg {
	case EventCommand:
		r.Commands.update(e)
	case EventForegroundDone:
		r.Commands.Statuses.Increment(e.Status)
	case EventBackgroundStart, EventBackgroundDone:
		r.Background.update(e)
	case EventSessionStart, EventSessionEnd, EventForegroundOnly, EventJobsKilled:
		// Counted by the session index.
	default:
		r.UnknownEvents.Increment(e.Msg)
	}
}

type CommandReport struct {
	// Programs counts dispatched program names.
	Programs StrCounter `json:"programs"`
	// Statuses counts how finished foreground commands ended.
	Statuses StrCounter `json:"statuses"`
}

func (r *CommandReport) update(e *Event) {
	if name := firstWord(e.Argv); name != "" {
		r.Programs.Increment(name)
	}
}

type BackgroundReport struct {
	Started int `json:"started"`
	// Statuses counts how reaped background children ended.
	Statuses StrCounter `json:"statuses"`
}

func (r *BackgroundReport) update(e *Event) {
	switch e.Msg {
	case EventBackgroundStart:
		r.Started++
	case EventBackgroundDone:
		r.Statuses.Increment(e.Status)
	}
}

// SessionSummary condenses one session's activity.
type SessionSummary struct {
	ShellPid       int      `json:"shell_pid"`
	Commands       []string `json:"commands"`
	BackgroundJobs int      `json:"background_jobs"`
	Toggles        int      `json:"foreground_only_toggles"`
	JobsKilled     int      `json:"jobs_killed"`
}

func (s *SessionSummary) update(e *Event) {
	if e.ShellPid != 0 {
		s.ShellPid = e.ShellPid
	}

	switch e.Msg {
	case EventCommand:
		s.Commands = append(s.Commands, e.Argv)
	case EventBackgroundStart:
		s.BackgroundJobs++
	case EventForegroundOnly:
		s.Toggles++
	case EventJobsKilled:
		s.JobsKilled += e.Count
	}
}

// SessionIndex groups events by session ID.
type SessionIndex struct {
	// Map of sessionID -> summary
	sessions map[string]*SessionSummary
}

func (i *SessionIndex) init() {
	if i.sessions == nil {
		i.sessions = make(map[string]*SessionSummary)
	}
}

// Session looks up one session's summary.
func (i *SessionIndex) Session(id string) (*SessionSummary, bool) {
	summary, ok := i.sessions[id]
	return summary, ok
}

// MarshalJSON implements custom JSON marshaling.
func (i SessionIndex) MarshalJSON() ([]byte, error) {
	if i.sessions == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(i.sessions)
}

func (i *SessionIndex) update(e *Event) {
	i.init()

	if e.SessionID == "" {
		return
	}
	summary, ok := i.sessions[e.SessionID]
	if !ok {
		summary = &SessionSummary{}
		i.sessions[e.SessionID] = summary
	}

	summary.update(e)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count reports how often key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements custom JSON marshaling.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

// firstWord extracts the program name from a quoted argv string.
func firstWord(argv string) string {
	words, err := shellquote.Split(argv)
	if err != nil || len(words) == 0 {
		return ""
	}
	return words[0]
}
