package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
)

// AccrueReturn pays every whole period due at now. Accrual runs under the
// account's unit of work and compare-and-swaps PeriodsPaid, so a replay for
// the same instant appends nothing.
func (s *transactionCoordinator) AccrueReturn(ctx context.Context, positionID string, now time.Time) (*domain.InvestmentPosition, error) {
	stored, err := s.positions.FindPositionByID(ctx, positionID)
	if err != nil {
		return nil, err
	}

	var (
		result   *domain.InvestmentPosition
		payout   int64
		periods  int
		finished bool
	)
	err = s.uow.WithinAccount(ctx, stored.AccountID, func(tx portsrepo.AccountTx) error {
		pos, err := tx.FindPosition(ctx, positionID)
		if err != nil {
			return err
		}
		result = pos
		periods = pos.DuePeriods(now)
		if periods == 0 {
			return nil
		}

		perPeriod, err := pos.PayoutPerPeriod()
		if err != nil {
			return err
		}
		if perPeriod > 0 && int64(periods) > math.MaxInt64/perPeriod {
			return fmt.Errorf("%w: payout overflow for position %s", apperrors.ErrInternal, positionID)
		}
		payout = perPeriod * int64(periods)

		expectedPeriods, expectedStatus := pos.PeriodsPaid, pos.Status
		firstPeriod := pos.PeriodsPaid + 1
		pos.RecordAccrual(periods, payout, now)
		finished = pos.Status == domain.PositionCompleted

		entries := make([]domain.LedgerEntry, 0, 2)
		if payout > 0 {
			entries = append(entries, domain.LedgerEntry{
				AccountID:   pos.AccountID,
				Currency:    pos.Currency,
				Amount:      payout,
				Direction:   domain.Credit,
				SourceKind:  domain.SourceRoiPayout,
				ReferenceID: pos.PositionID,
				Memo:        fmt.Sprintf("periods %d-%d", firstPeriod, pos.PeriodsPaid),
				CreatedBy:   domain.SystemActorID,
			})
		}
		if finished {
			entries = append(entries, principalReturn(pos, "principal returned at maturity", domain.SystemActorID))
		}
		if len(entries) > 0 {
			if _, err := tx.AppendEntries(ctx, entries...); err != nil {
				return err
			}
		}
		return tx.UpdatePosition(ctx, *pos, expectedPeriods, expectedStatus)
	})
	if err != nil {
		s.LogError(ctx, err, "Accrual failed", slog.String("position_id", positionID))
		return nil, err
	}
	if periods == 0 {
		return result, nil
	}

	s.LogInfo(ctx, "Investment return accrued",
		slog.String("position_id", positionID),
		slog.Int("periods", periods),
		slog.Int64("payout", payout),
		slog.Bool("completed", finished))
	events := make([]domain.Event, 0, 2)
	if payout > 0 {
		events = append(events, positionEvent(domain.EventInvestmentReturnPaid, result, payout, domain.SystemActorID))
	}
	if finished {
		events = append(events, positionEvent(domain.EventInvestmentCompleted, result, result.PrincipalAmount, domain.SystemActorID))
	}
	s.publish(ctx, events...)
	return result, nil
}

// CancelPosition stops a running position. Payouts already made are kept.
func (s *transactionCoordinator) CancelPosition(ctx context.Context, actor domain.Actor, positionID string) (*domain.InvestmentPosition, error) {
	if err := s.RequireAdmin(ctx, actor, "cancel position"); err != nil {
		return nil, err
	}
	stored, err := s.positions.FindPositionByID(ctx, positionID)
	if err != nil {
		return nil, err
	}

	var result *domain.InvestmentPosition
	err = s.uow.WithinAccount(ctx, stored.AccountID, func(tx portsrepo.AccountTx) error {
		pos, err := tx.FindPosition(ctx, positionID)
		if err != nil {
			return err
		}
		expectedPeriods := pos.PeriodsPaid
		if err := pos.Cancel(actor.AccountID, s.now()); err != nil {
			return err
		}
		if _, err := tx.AppendEntries(ctx, principalReturn(pos, "principal returned on cancellation", actor.AccountID)); err != nil {
			return err
		}
		if err := tx.UpdatePosition(ctx, *pos, expectedPeriods, domain.PositionRunning); err != nil {
			return err
		}
		result = pos
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Position cancellation failed", slog.String("position_id", positionID))
		return nil, err
	}

	s.LogInfo(ctx, "Investment position cancelled", slog.String("position_id", positionID))
	s.publish(ctx, positionEvent(domain.EventInvestmentCancelled, result, result.PrincipalAmount, actor.AccountID))
	return result, nil
}

func principalReturn(pos *domain.InvestmentPosition, memo, by string) domain.LedgerEntry {
	return domain.LedgerEntry{
		AccountID:   pos.AccountID,
		Currency:    pos.Currency,
		Amount:      pos.PrincipalAmount,
		Direction:   domain.Credit,
		SourceKind:  domain.SourceInvestment,
		ReferenceID: pos.PositionID,
		Memo:        memo,
		CreatedBy:   by,
	}
}
