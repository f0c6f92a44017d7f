package mcauth

import "fmt"

// Exchange stages, in chain order.
const (
	StageMicrosoftToken = iota + 1
	StageXboxUserToken
	StageXSTSToken
	StageMinecraftToken
	StageProfile
)

var stageNames = map[int]string{
	StageMicrosoftToken: "microsoft_token",
	StageXboxUserToken:  "xbox_user_token",
	StageXSTSToken:      "xsts_token",
	StageMinecraftToken: "minecraft_token",
	StageProfile:        "profile",
}

// ExchangeError reports which hop of the chain failed. Any hop failure is
// terminal for the whole exchange; callers must treat it as atomic.
type ExchangeError struct {
	Stage  int
	Status int    // HTTP status of the failing response, 0 on transport errors
	Body   string // response body when available, for diagnosis
	Err    error  // underlying error, if any
}

func (e *ExchangeError) Error() string {
	name := stageNames[e.Stage]
	switch {
	case e.Err != nil:
		return fmt.Sprintf("mcauth: stage %d (%s) failed: %v", e.Stage, name, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("mcauth: stage %d (%s) failed: status %d: %s", e.Stage, name, e.Status, e.Body)
	default:
		return fmt.Sprintf("mcauth: stage %d (%s) failed", e.Stage, name)
	}
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// StageName returns the short diagnostic name for the failing stage.
func (e *ExchangeError) StageName() string { return stageNames[e.Stage] }
