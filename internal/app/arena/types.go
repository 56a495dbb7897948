package arena

import (
	"duel-arena/internal/duel"
	"duel-arena/internal/world"
)

type JoinInput struct {
	PlayerID string         `json:"player_id"`
	Name     string         `json:"name"`
	Position world.Position `json:"position"`
}

type PlayerView struct {
	PlayerID string         `json:"player_id"`
	Name     string         `json:"name"`
	Position world.Position `json:"position"`
	Balance  int64          `json:"balance"`
}

type ChallengeInput struct {
	SenderID string `json:"sender_id"`
	Target   string `json:"target"`
	Bet      string `json:"bet,omitempty"`
}

type AcceptInput struct {
	TargetID string `json:"target_id"`
	Sender   string `json:"sender"`
}

type LeaveResponse struct {
	PlayerID         string      `json:"player_id"`
	Forfeit          *Resolution `json:"forfeit,omitempty"`
	ReceivedCanceled int         `json:"received_cancelled"`
	SentCanceled     int         `json:"sent_cancelled"`
}

// Resolution is the wire form of duel.Outcome.
type Resolution struct {
	SessionID     string `json:"session_id"`
	WinnerID      string `json:"winner_id"`
	LoserID       string `json:"loser_id"`
	Bet           int64  `json:"bet"`
	Settled       bool   `json:"settled"`
	TransferError string `json:"transfer_error,omitempty"`
}

func resolutionOf(o *duel.Outcome) *Resolution {
	if o == nil {
		return nil
	}
	r := &Resolution{
		SessionID: o.SessionID,
		WinnerID:  o.WinnerID,
		LoserID:   o.LoserID,
		Bet:       o.Bet,
		Settled:   o.Settled(),
	}
	if o.TransferErr != nil {
		r.TransferError = o.TransferErr.Error()
	}
	return r
}

type DamageResponse struct {
	Decision duel.DamageDecision `json:"decision"`
}

type DeathResponse struct {
	InDuel        bool        `json:"in_duel"`
	KeepInventory bool        `json:"keep_inventory"`
	Resolution    *Resolution `json:"resolution,omitempty"`
}

type DuelStatus struct {
	PlayerID              string            `json:"player_id"`
	InDuel                bool              `json:"in_duel"`
	Active                bool              `json:"active"`
	AllowWorldInteraction bool              `json:"allow_world_interaction"`
	Session               *duel.SessionView `json:"session,omitempty"`
	PendingReceived       []duel.Request    `json:"pending_received"`
	PendingSent           []duel.Request    `json:"pending_sent"`
}

type DuelList struct {
	Items        []duel.SessionView `json:"items"`
	PendingCount int                `json:"pending_requests"`
}
