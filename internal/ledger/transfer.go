package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Stage string

const (
	StageWithdraw Stage = "withdraw"
	StageDeposit  Stage = "deposit"
	StageRefund   Stage = "refund"
)

var (
	ErrWithdrawFailed = errors.New("stake_withdraw_failed")
	ErrDepositFailed  = errors.New("stake_deposit_failed")
	ErrRefundFailed   = errors.New("stake_refund_failed")
)

// TransferError reports the phase a stake transfer stopped at. Critical is
// set only when the loser was debited and neither the winner nor the loser
// could be credited afterwards.
type TransferError struct {
	Stage    Stage
	From     string
	To       string
	Amount   int64
	Ref      string
	Refunded bool
	Critical bool
	Err      error
}

func (e *TransferError) Error() string {
	switch e.Stage {
	case StageWithdraw:
		return fmt.Sprintf("withdraw %d from %s: %v", e.Amount, e.From, e.Err)
	case StageDeposit:
		return fmt.Sprintf("deposit %d to %s failed, refunded to %s: %v", e.Amount, e.To, e.From, e.Err)
	default:
		return fmt.Sprintf("CRITICAL: %d debited from %s, deposit to %s and refund both failed: %v", e.Amount, e.From, e.To, e.Err)
	}
}

func (e *TransferError) Unwrap() []error {
	var stageErr error
	switch e.Stage {
	case StageWithdraw:
		stageErr = ErrWithdrawFailed
	case StageDeposit:
		stageErr = ErrDepositFailed
	default:
		stageErr = ErrRefundFailed
	}
	return []error{stageErr, e.Err}
}

// Transfer moves amount from one player to another in two phases: withdraw
// from the loser, then deposit to the winner. A failed deposit is refunded to
// the loser. A failed refund is not retried; it is logged at fatal level
// without exiting and returned with Critical set.
func Transfer(ctx context.Context, l Ledger, from, to string, amount int64, ref string) error {
	if amount <= 0 {
		return nil
	}
	metricTransferTotal.Add(1)
	logger := log.With().
		Str("from_id", from).
		Str("to_id", to).
		Int64("amount", amount).
		Str("ref", ref).
		Logger()

	if err := l.Withdraw(ctx, from, amount, ref); err != nil {
		metricTransferFailed.Add(1)
		logger.Warn().Err(err).Str("stage", string(StageWithdraw)).Msg("stake withdraw failed; stake not moved")
		return &TransferError{Stage: StageWithdraw, From: from, To: to, Amount: amount, Ref: ref, Err: err}
	}

	depositErr := l.Deposit(ctx, to, amount, ref)
	if depositErr == nil {
		return nil
	}
	metricTransferFailed.Add(1)
	logger.Warn().Err(depositErr).Str("stage", string(StageDeposit)).Msg("stake deposit failed; attempting refund")

	if err := l.Deposit(WithEntryType(ctx, EntryStakeRefund), from, amount, ref); err != nil {
		metricTransferCritical.Add(1)
		logger.WithLevel(zerolog.FatalLevel).
			Bool("critical", true).
			Err(err).
			AnErr("deposit_err", depositErr).
			Str("stage", string(StageRefund)).
			Msg("stake refund failed; funds debited and never credited, manual intervention required")
		return &TransferError{
			Stage: StageRefund, From: from, To: to, Amount: amount, Ref: ref,
			Critical: true, Err: errors.Join(depositErr, err),
		}
	}
	metricTransferRefunded.Add(1)
	logger.Info().Msg("stake refunded to loser")
	return &TransferError{Stage: StageDeposit, From: from, To: to, Amount: amount, Ref: ref, Refunded: true, Err: depositErr}
}
