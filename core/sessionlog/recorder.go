// Package sessionlog emits and digests the newline delimited JSON event
// log recording what each shell session did.
package sessionlog

import (
	"io"

	"github.com/kballard/go-shellquote"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/minish-sh/minish/core/proc"
)

// Event names, stored in the msg field of each log line.
const (
	EventSessionStart    = "session_start"
	EventSessionEnd      = "session_end"
	EventCommand         = "command"
	EventBackgroundStart = "background_start"
	EventBackgroundDone  = "background_done"
	EventForegroundDone  = "foreground_done"
	EventForegroundOnly  = "foreground_only"
	EventJobsKilled      = "jobs_killed"
)

// Recorder writes one session's events. Every line carries the session ID
// and the shell's PID so logs from concurrent shells can be teased apart.
type Recorder struct {
	entry     *logrus.Entry
	sessionID string
}

// NewRecorder emits events for a fresh session to w.
func NewRecorder(w io.Writer, shellPid int) *Recorder {
	log := logrus.New()
	log.Out = w
	log.SetFormatter(&logrus.JSONFormatter{})

	sessionID := ulid.Make().String()
	return &Recorder{
		entry: logrus.NewEntry(log).WithFields(logrus.Fields{
			"session_id": sessionID,
			"shell_pid":  shellPid,
		}),
		sessionID: sessionID,
	}
}

// NewNop returns a Recorder that discards every event but still mints a
// session ID.
func NewNop() *Recorder {
	return NewRecorder(io.Discard, 0)
}

// SessionID identifies this recorder's session.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// SessionStart marks the beginning of the interactive loop.
func (r *Recorder) SessionStart() {
	r.entry.Info(EventSessionStart)
}

// SessionEnd marks the end of the interactive loop.
func (r *Recorder) SessionEnd() {
	r.entry.Info(EventSessionEnd)
}

// Command records a parsed line about to be dispatched.
func (r *Recorder) Command(argv []string, background bool) {
	r.entry.WithFields(logrus.Fields{
		"argv":       shellquote.Join(argv...),
		"background": background,
	}).Info(EventCommand)
}

// BackgroundStart records a child placed in the background.
func (r *Recorder) BackgroundStart(pid int, argv []string) {
	r.entry.WithFields(logrus.Fields{
		"pid":  pid,
		"argv": shellquote.Join(argv...),
	}).Info(EventBackgroundStart)
}

// BackgroundDone records a reaped background child.
func (r *Recorder) BackgroundDone(pid int, status proc.Status) {
	r.entry.WithFields(logrus.Fields{
		"pid":    pid,
		"status": status.String(),
	}).Info(EventBackgroundDone)
}

// ForegroundDone records how a foreground command ended.
func (r *Recorder) ForegroundDone(argv []string, status proc.Status) {
	r.entry.WithFields(logrus.Fields{
		"argv":   shellquote.Join(argv...),
		"status": status.String(),
	}).Info(EventForegroundDone)
}

// ForegroundOnly records a toggle of foreground-only mode.
func (r *Recorder) ForegroundOnly(enabled bool) {
	r.entry.WithField("enabled", enabled).Info(EventForegroundOnly)
}

// JobsKilled records how many background children were killed at exit.
func (r *Recorder) JobsKilled(count int) {
	r.entry.WithField("count", count).Info(EventJobsKilled)
}
