package obs

import "time"

// Stage names the four points the original latency-research harness
// measured: capture, encrypt+send, receive, decrypt+inject. Carried
// forward as named stamps rather than reimplementing the offline
// analysis pipeline it fed.
type Stage string

const (
	StageCapture      Stage = "capture"
	StageEncryptSend  Stage = "encrypt_send"
	StageReceive      Stage = "receive"
	StageDecryptInject Stage = "decrypt_inject"
)

// Checkpoint is a single timestamped stage marker for one keystroke's
// trip through the pipeline. It carries no keystroke content.
type Checkpoint struct {
	Stage   Stage
	At      time.Time
	Counter uint64
}

// Stamp returns a Checkpoint for the given stage at the current
// instant, tagged with the rotation counter active at that moment.
func Stamp(stage Stage, counter uint64) Checkpoint {
	return Checkpoint{Stage: stage, At: time.Now(), Counter: counter}
}
