package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// watcher polls one submitted video task until it terminates or the session
// is reset. A transport error on a single tick is absorbed and the next tick
// runs on schedule; there is no maximum-attempt cutoff. Once the elapsed time
// crosses the warn threshold a recurring advisory event is emitted — it never
// cancels the poll.
type watcher struct {
	pipe    *Pipeline
	sess    *Session
	apiKey  string
	taskID  string
	started time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func (p *Pipeline) newWatcher(sess *Session, apiKey, taskID string) *watcher {
	return &watcher{
		pipe:    p,
		sess:    sess,
		apiKey:  apiKey,
		taskID:  taskID,
		started: time.Now(),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (w *watcher) stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// wait blocks until the watcher goroutine exits. Used by the CLI and tests.
func (w *watcher) wait() {
	<-w.done
}

func (w *watcher) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.pipe.pollInterval)
	defer ticker.Stop()
	var lastWarn time.Time

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
		}

		if elapsed := time.Since(w.started); elapsed > w.pipe.warnAfter && time.Since(lastWarn) >= w.pipe.warnEvery {
			lastWarn = time.Now()
			w.sess.log("watch", fmt.Sprintf("still waiting after %s", elapsed.Round(time.Second)), "warning")
			w.pipe.logger.Warn().Str("task_id", w.taskID).Dur("elapsed", elapsed).Msg("video task still pending")
		}

		snap, err := w.pipe.videos.TaskStatus(context.Background(), w.apiKey, w.taskID)
		if err != nil {
			// Transient poll failures keep the loop alive.
			w.pipe.logger.Debug().Err(err).Str("task_id", w.taskID).Msg("task status poll failed")
			continue
		}

		switch {
		case snap.Succeeded():
			w.sess.mu.Lock()
			w.sess.videoURL = snap.ResultURL()
			w.sess.stage = StageTaskSucceeded
			w.sess.watch = nil
			w.sess.logLocked("watch", "video ready", "success")
			w.sess.mu.Unlock()
			w.pipe.logger.Info().Str("task_id", w.taskID).Msg("video task succeeded")
			return
		case snap.Failed():
			reason := snap.FailureReason()
			w.sess.mu.Lock()
			w.sess.failureReason = reason
			w.sess.stage = StageTaskFailed
			w.sess.watch = nil
			w.sess.logLocked("watch", "failed: "+reason, "error")
			w.sess.mu.Unlock()
			w.pipe.logger.Warn().Str("task_id", w.taskID).Str("reason", reason).Msg("video task failed")
			return
		}
		// Unknown or in-flight states keep polling.
	}
}

// Wait blocks until the session's active watcher finishes. It returns
// immediately when nothing is being watched.
func (p *Pipeline) Wait(sess *Session) {
	sess.mu.Lock()
	w := sess.watch
	sess.mu.Unlock()
	if w != nil {
		w.wait()
	}
}
