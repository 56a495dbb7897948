package arena

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrPlayerOffline      = errors.New("player_offline")
	ErrHistoryUnavailable = errors.New("ledger_history_unavailable")
)
