package pipeline

import (
	"sync"
	"time"

	"ugcstudio/internal/domain/fault"
)

// Stage is the linear progress marker of a generation session.
type Stage string

const (
	StageIdle          Stage = "idle"
	StageImageUploaded Stage = "image_uploaded"
	StageScriptReady   Stage = "script_ready"
	StagePromptReady   Stage = "prompt_ready"
	StageTaskSubmitted Stage = "task_submitted"
	StageTaskSucceeded Stage = "task_succeeded"
	StageTaskFailed    Stage = "task_failed"
)

// Event is one durable, timestamped log entry of a session.
type Event struct {
	Time    time.Time `json:"time"`
	Step    string    `json:"step"`
	Message string    `json:"message"`
	Level   string    `json:"level"`
}

const maxEvents = 100

// Session holds the ephemeral state of one generation flow. Fields are
// populated strictly in pipeline order (image, script, prompt, task). A
// failed operation commits nothing of its own; work completed by an earlier
// step, like a finished upload, stays committed.
type Session struct {
	mu sync.Mutex

	stage         Stage
	imageURL      string
	script        string
	caption       string
	videoPrompt   string
	taskID        string
	videoURL      string
	failureReason string

	busy   bool
	events []Event
	watch  *watcher
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{stage: StageIdle}
}

// Snapshot is an atomic read of every session field.
type Snapshot struct {
	Stage         Stage
	ImageURL      string
	Script        string
	Caption       string
	VideoPrompt   string
	TaskID        string
	VideoURL      string
	FailureReason string
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Stage:         s.stage,
		ImageURL:      s.imageURL,
		Script:        s.script,
		Caption:       s.caption,
		VideoPrompt:   s.videoPrompt,
		TaskID:        s.taskID,
		VideoURL:      s.videoURL,
		FailureReason: s.failureReason,
	}
}

// Stage returns the current pipeline stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// SetScript replaces the script and caption with user-edited text, the same
// way the original flow lets a reviewer touch up the generated copy before
// deriving the video prompt.
func (s *Session) SetScript(script, caption string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
	s.caption = caption
}

// SetVideoPrompt replaces the video prompt with user-written text, enabling
// the manual-prompt path that skips script generation.
func (s *Session) SetVideoPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoPrompt = prompt
}

// Events returns a copy of the session's log, newest last.
func (s *Session) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// begin flips the busy flag, rejecting re-entrant operations while one is in
// flight. A flag, not a queue.
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return fault.Invalid("another operation is already in progress")
	}
	s.busy = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Session) log(step, message, level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLocked(step, message, level)
}

func (s *Session) logLocked(step, message, level string) {
	s.events = append(s.events, Event{Time: time.Now(), Step: step, Message: message, Level: level})
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// reset clears every field and detaches any watcher. Callers stop the watcher
// outside the lock.
func (s *Session) reset() *watcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.watch
	s.watch = nil
	s.stage = StageIdle
	s.imageURL = ""
	s.script = ""
	s.caption = ""
	s.videoPrompt = ""
	s.taskID = ""
	s.videoURL = ""
	s.failureReason = ""
	s.events = nil
	return w
}
