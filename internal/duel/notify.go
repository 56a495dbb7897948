package duel

type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelTitle Channel = "title"
)

// Chat template keys.
const (
	KeyRequestSent            = "request.sent"
	KeyRequestSentWithBet     = "request.sent-with-bet"
	KeyRequestReceived        = "request.received"
	KeyRequestReceivedWithBet = "request.received-with-bet"
	KeyRequestExpired         = "request.expired"
	KeyRequestCancelled       = "request.cancelled"
	KeyDuelAccepted           = "duel.accepted"
	KeyDuelTargetAccepted     = "duel.target-accepted"
	KeyDuelCountdown          = "duel.countdown"
	KeyDuelStarted            = "duel.started"
	KeyDuelWon                = "duel.won"
	KeyDuelWonWithBet         = "duel.won-with-bet"
	KeyDuelLost               = "duel.lost"
	KeyDuelLostWithBet        = "duel.lost-with-bet"
	KeyDuelPlayerLeft         = "duel.player-left"
	KeyDuelStakeFailed        = "duel.stake-failed"
)

// Title template keys.
const (
	TitleCountdown = "countdown"
	TitleStart     = "start"
	TitleWin       = "win"
	TitleLose      = "lose"
)

const unknownPlayer = "Unknown"

type Notification struct {
	RecipientID  string            `json:"recipient_id"`
	Channel      Channel           `json:"channel"`
	TemplateKey  string            `json:"template_key"`
	Placeholders map[string]string `json:"placeholders,omitempty"`
}

// Notifier delivers chat and title events to players. Rendering and
// localization happen on the other side.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Presence answers who is connected and what they are called.
type Presence interface {
	Online(playerID string) bool
	Name(playerID string) string
	Lookup(name string) (string, bool)
}

// Proximity reports whether two live players are close enough to duel.
type Proximity interface {
	CoLocated(aID, bID string) bool
}
