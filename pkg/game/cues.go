package game

import "log/slog"

// Sound cues the page asks the outside world to play.
const (
	CueEchoes         = "echoes"
	CueButtonClicked  = "button-clicked"
	CueHeartBeat      = "heart-beat"
	CueUnlock         = "unlock"
	CueRust           = "rust"
	CuePuzzleComplete = "puzzle-complete"
)

// Player plays named sound cues. Stopping a cue that is not playing is a no-op.
type Player interface {
	Play(cue string, loop bool)
	Stop(cue string)
}

// LogPlayer records cues to a logger instead of playing them.
type LogPlayer struct {
	Logger *slog.Logger
}

func (p LogPlayer) Play(cue string, loop bool) {
	p.Logger.Debug("Cue play", "cue", cue, "loop", loop)
}

func (p LogPlayer) Stop(cue string) {
	p.Logger.Debug("Cue stop", "cue", cue)
}
