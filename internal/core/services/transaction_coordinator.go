package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coinvest_backend/internal/core/ports/services"
	"github.com/SscSPs/coinvest_backend/internal/dto"
	"github.com/SscSPs/coinvest_backend/internal/utils/pagination"
	"github.com/google/uuid"
)

// transactionCoordinator owns request creation and the only code paths that
// write ledger entries.
type transactionCoordinator struct {
	BaseService
	uow       portsrepo.UnitOfWork
	ledger    portsrepo.LedgerReader
	requests  portsrepo.RequestRepositoryFacade
	plans     portsrepo.PlanRepositoryFacade
	positions portsrepo.PositionReader
	accounts  portsrepo.AccountReader
	balances  portssvc.BalanceProjectorSvc
	addresses portssvc.AddressAllocatorSvc

	approverMu sync.RWMutex
	approver   portssvc.AutoApprover
}

// NewTransactionCoordinator creates the coordinator. addresses may be nil,
// in which case crypto deposits carry no deposit address.
func NewTransactionCoordinator(repos portsrepo.RepositoryProvider, balances portssvc.BalanceProjectorSvc, addresses portssvc.AddressAllocatorSvc, options ...ServiceOption) portssvc.TransactionCoordinatorSvc {
	svc := &transactionCoordinator{
		BaseService: newBaseService(),
		uow:         repos.UnitOfWork,
		ledger:      repos.Ledger,
		requests:    repos.Requests,
		plans:       repos.Plans,
		positions:   repos.Positions,
		accounts:    repos.Accounts,
		balances:    balances,
		addresses:   addresses,
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.TransactionCoordinatorSvc = (*transactionCoordinator)(nil)

func (s *transactionCoordinator) SetAutoApprover(approver portssvc.AutoApprover) {
	s.approverMu.Lock()
	defer s.approverMu.Unlock()
	s.approver = approver
}

func (s *transactionCoordinator) autoApprover() portssvc.AutoApprover {
	s.approverMu.RLock()
	defer s.approverMu.RUnlock()
	return s.approver
}

// --- Request creation ---

func (s *transactionCoordinator) RequestDeposit(ctx context.Context, actor domain.Actor, in dto.CreateDepositRequest) (*domain.TransactionRequest, error) {
	currency, err := parseAmount(in.Currency, in.Amount)
	if err != nil {
		return nil, err
	}
	if existing, err := s.findIdempotent(ctx, actor.AccountID, in.IdempotencyKey); err != nil || existing != nil {
		return existing, err
	}
	if err := s.ensureAccount(ctx, actor.AccountID); err != nil {
		return nil, err
	}

	req := s.newRequest(actor, domain.KindDeposit, currency, in.Amount, in.IdempotencyKey)
	req.ProofRef = in.ProofRef
	if currency.IsCrypto() && s.addresses != nil {
		addr, err := s.addresses.GetOrCreateAddress(ctx, actor.AccountID, currency)
		if err != nil {
			s.LogError(ctx, err, "Failed to allocate deposit address",
				slog.String("account_id", actor.AccountID),
				slog.String("asset", string(currency)))
			return nil, fmt.Errorf("failed to allocate deposit address: %w", err)
		}
		req.DepositAddress = addr
	}
	return s.create(ctx, req)
}

func (s *transactionCoordinator) RequestWithdrawal(ctx context.Context, actor domain.Actor, in dto.CreateWithdrawalRequest) (*domain.TransactionRequest, error) {
	currency, err := parseAmount(in.Currency, in.Amount)
	if err != nil {
		return nil, err
	}
	if in.Destination == "" {
		return nil, apperrors.NewValidationError("destination is required for withdrawals")
	}
	if existing, err := s.findIdempotent(ctx, actor.AccountID, in.IdempotencyKey); err != nil || existing != nil {
		return existing, err
	}
	if err := s.ensureAccount(ctx, actor.AccountID); err != nil {
		return nil, err
	}
	if err := s.precheckFunds(ctx, actor.AccountID, currency, in.Amount); err != nil {
		return nil, err
	}

	req := s.newRequest(actor, domain.KindWithdrawal, currency, in.Amount, in.IdempotencyKey)
	req.Destination = in.Destination
	return s.create(ctx, req)
}

func (s *transactionCoordinator) RequestInvestment(ctx context.Context, actor domain.Actor, in dto.CreateInvestmentRequest) (*domain.TransactionRequest, error) {
	currency, err := parseAmount(in.Currency, in.Amount)
	if err != nil {
		return nil, err
	}
	if existing, err := s.findIdempotent(ctx, actor.AccountID, in.IdempotencyKey); err != nil || existing != nil {
		return existing, err
	}
	if err := s.ensureAccount(ctx, actor.AccountID); err != nil {
		return nil, err
	}

	plan, err := s.activePlan(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}
	if err := plan.CheckAmount(currency, in.Amount); err != nil {
		return nil, err
	}
	if err := s.precheckFunds(ctx, actor.AccountID, currency, in.Amount); err != nil {
		return nil, err
	}

	req := s.newRequest(actor, domain.KindInvestment, currency, in.Amount, in.IdempotencyKey)
	req.PlanID = plan.PlanID
	return s.create(ctx, req)
}

func parseAmount(code string, amount int64) (domain.Currency, error) {
	currency, err := domain.ParseCurrency(code)
	if err != nil {
		return "", err
	}
	if amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive, got %d", apperrors.ErrInvalidAmount, amount)
	}
	return currency, nil
}

// findIdempotent returns the request previously created with key, or nil.
func (s *transactionCoordinator) findIdempotent(ctx context.Context, accountID, key string) (*domain.TransactionRequest, error) {
	if key == "" {
		return nil, nil
	}
	existing, err := s.requests.FindRequestByIdempotencyKey(ctx, accountID, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	s.LogDebug(ctx, "Returning request for repeated idempotency key",
		slog.String("request_id", existing.RequestID))
	return existing, nil
}

func (s *transactionCoordinator) ensureAccount(ctx context.Context, accountID string) error {
	if _, err := s.accounts.FindAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	return nil
}

func (s *transactionCoordinator) activePlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	plan, err := s.plans.FindPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrPlanNotFound, planID)
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("%w: %s is not active", apperrors.ErrPlanNotFound, planID)
	}
	return plan, nil
}

// precheckFunds is optimistic; Settle re-checks under the account lock.
func (s *transactionCoordinator) precheckFunds(ctx context.Context, accountID string, currency domain.Currency, amount int64) error {
	balance, err := s.balances.GetBalance(ctx, accountID, currency)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: balance %d %s below requested %d", apperrors.ErrInsufficientFunds, balance, currency, amount)
	}
	return nil
}

func (s *transactionCoordinator) newRequest(actor domain.Actor, kind domain.RequestKind, currency domain.Currency, amount int64, key string) domain.TransactionRequest {
	now := s.now()
	return domain.TransactionRequest{
		RequestID:      uuid.NewString(),
		AccountID:      actor.AccountID,
		Kind:           kind,
		Currency:       currency,
		Amount:         amount,
		Status:         domain.StatusPending,
		IdempotencyKey: key,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.AccountID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.AccountID,
		},
	}
}

func (s *transactionCoordinator) create(ctx context.Context, req domain.TransactionRequest) (*domain.TransactionRequest, error) {
	if err := s.requests.SaveRequest(ctx, req); err != nil {
		// a concurrent call with the same key won the insert
		if errors.Is(err, apperrors.ErrDuplicate) && req.IdempotencyKey != "" {
			return s.requests.FindRequestByIdempotencyKey(ctx, req.AccountID, req.IdempotencyKey)
		}
		s.LogError(ctx, err, "Failed to save request", slog.String("kind", string(req.Kind)))
		return nil, fmt.Errorf("failed to save request: %w", err)
	}
	s.LogInfo(ctx, "Request created",
		slog.String("request_id", req.RequestID),
		slog.String("kind", string(req.Kind)),
		slog.String("currency", string(req.Currency)),
		slog.Int64("amount", req.Amount))
	s.publish(ctx, domain.Event{
		Type:        domain.EventRequestCreated,
		AccountID:   req.AccountID,
		ReferenceID: req.RequestID,
		Currency:    req.Currency,
		Amount:      req.Amount,
		ActorID:     req.CreatedBy,
		OccurredAt:  req.CreatedAt,
	})

	approver := s.autoApprover()
	if approver == nil {
		return &req, nil
	}
	updated, err := approver.AutoApprove(ctx, &req)
	if err == nil {
		return updated, nil
	}
	// The request exists regardless of how auto-approval went; report its current state.
	s.LogError(ctx, err, "Auto-approval failed", slog.String("request_id", req.RequestID))
	current, findErr := s.requests.FindRequestByID(ctx, req.RequestID)
	if findErr != nil {
		return &req, nil
	}
	return current, nil
}

// --- Settlement ---

func (s *transactionCoordinator) Settle(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, []domain.LedgerEntry, error) {
	if err := s.RequireAdmin(ctx, actor, "settle request"); err != nil {
		return nil, nil, err
	}
	stored, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	var (
		result    *domain.TransactionRequest
		appended  []domain.LedgerEntry
		position  *domain.InvestmentPosition
		shortfall error
	)
	err = s.uow.WithinAccount(ctx, stored.AccountID, func(tx portsrepo.AccountTx) error {
		req, err := tx.FindRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := req.CheckSettleable(); err != nil {
			return err
		}
		now := s.now()

		if req.Kind.IsDebit() {
			balance, err := tx.Balance(ctx, req.Currency)
			if err != nil {
				return err
			}
			if balance < req.Amount {
				detail := fmt.Sprintf("balance %d below requested %d", balance, req.Amount)
				req.Reject(actor.AccountID, domain.ReasonInsufficientFunds, detail, now)
				if err := tx.UpdateRequest(ctx, *req, domain.StatusApproved); err != nil {
					return err
				}
				result = req
				shortfall = fmt.Errorf("%w: %s", apperrors.ErrInsufficientFunds, detail)
				return nil
			}
		}

		entry := domain.LedgerEntry{
			AccountID:   req.AccountID,
			Currency:    req.Currency,
			Amount:      req.Amount,
			ReferenceID: req.RequestID,
			CreatedBy:   actor.AccountID,
		}
		switch req.Kind {
		case domain.KindDeposit:
			entry.Direction, entry.SourceKind = domain.Credit, domain.SourceDeposit
			entry.Memo = req.ProofRef
		case domain.KindWithdrawal:
			entry.Direction, entry.SourceKind = domain.Debit, domain.SourceWithdrawal
			entry.Memo = req.Destination
		case domain.KindInvestment:
			entry.Direction, entry.SourceKind = domain.Debit, domain.SourceInvestment
			entry.Memo = "principal for plan " + req.PlanID
		default:
			return fmt.Errorf("%w: unknown request kind %s", apperrors.ErrInternal, req.Kind)
		}

		if appended, err = tx.AppendEntries(ctx, entry); err != nil {
			return err
		}

		if req.Kind == domain.KindInvestment {
			// plan terms are copied onto the position at settlement time
			plan, err := tx.FindPlan(ctx, req.PlanID)
			if err != nil {
				return fmt.Errorf("failed to load plan for settlement: %w", err)
			}
			pos := domain.NewPosition(uuid.NewString(), req, plan, now)
			if err := tx.SavePosition(ctx, pos); err != nil {
				return err
			}
			position = &pos
		}

		req.MarkSettled(actor.AccountID, now)
		if err := tx.UpdateRequest(ctx, *req, domain.StatusApproved); err != nil {
			return err
		}
		result = req
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Settlement failed",
			slog.String("request_id", requestID),
			slog.Bool("retryable", apperrors.IsRetryable(err)))
		return nil, nil, err
	}

	if shortfall != nil {
		s.LogInfo(ctx, "Request rejected at settlement",
			slog.String("request_id", requestID),
			slog.String("reason", domain.ReasonInsufficientFunds))
		s.publish(ctx, requestEvent(domain.EventRequestRejected, result, actor))
		return result, nil, shortfall
	}

	s.LogInfo(ctx, "Request settled",
		slog.String("request_id", requestID),
		slog.Int("entries", len(appended)))
	events := []domain.Event{requestEvent(domain.EventRequestSettled, result, actor)}
	if position != nil {
		events = append(events, positionEvent(domain.EventInvestmentStarted, position, position.PrincipalAmount, actor.AccountID))
	}
	s.publish(ctx, events...)
	return result, appended, nil
}

func (s *transactionCoordinator) AdjustBalance(ctx context.Context, actor domain.Actor, in dto.AdjustBalanceRequest) (*domain.LedgerEntry, error) {
	if err := s.RequireAdmin(ctx, actor, "adjust balance"); err != nil {
		return nil, err
	}
	currency, err := parseAmount(in.Currency, in.Amount)
	if err != nil {
		return nil, err
	}
	if !in.Direction.IsValid() {
		return nil, apperrors.NewValidationError("direction must be credit or debit")
	}
	if err := s.ensureAccount(ctx, in.AccountID); err != nil {
		return nil, err
	}

	var appended []domain.LedgerEntry
	err = s.uow.WithinAccount(ctx, in.AccountID, func(tx portsrepo.AccountTx) error {
		if in.Direction == domain.Debit {
			balance, err := tx.Balance(ctx, currency)
			if err != nil {
				return err
			}
			if balance < in.Amount {
				return fmt.Errorf("%w: adjustment of %d would take balance %d negative", apperrors.ErrInsufficientFunds, in.Amount, balance)
			}
		}
		appended, err = tx.AppendEntries(ctx, domain.LedgerEntry{
			AccountID:   in.AccountID,
			Currency:    currency,
			Amount:      in.Amount,
			Direction:   in.Direction,
			SourceKind:  domain.SourceAdminAdjustment,
			ReferenceID: uuid.NewString(),
			Memo:        in.Memo,
			CreatedBy:   actor.AccountID,
		})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Balance adjustment failed", slog.String("target_account_id", in.AccountID))
		return nil, err
	}

	entry := appended[0]
	s.LogInfo(ctx, "Balance adjusted",
		slog.String("entry_id", entry.EntryID),
		slog.String("target_account_id", entry.AccountID),
		slog.String("direction", string(entry.Direction)),
		slog.Int64("amount", entry.Amount))
	s.publish(ctx, domain.Event{
		Type:        domain.EventLedgerAdjusted,
		AccountID:   entry.AccountID,
		ReferenceID: entry.EntryID,
		Currency:    entry.Currency,
		Amount:      entry.SignedAmount(),
		Reason:      entry.Memo,
		ActorID:     actor.AccountID,
		OccurredAt:  entry.CreatedAt,
	})
	return &entry, nil
}

// --- Reads ---

func (s *transactionCoordinator) GetRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.TransactionRequest, error) {
	req, err := s.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireAccess(ctx, actor, req.AccountID); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *transactionCoordinator) ListRequests(ctx context.Context, actor domain.Actor, params dto.ListRequestsParams) ([]domain.TransactionRequest, error) {
	filter := domain.RequestFilter{
		AccountID: params.AccountID,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}
	if !actor.IsAdmin() {
		if filter.AccountID != "" && filter.AccountID != actor.AccountID {
			return nil, s.RequireAccess(ctx, actor, filter.AccountID)
		}
		filter.AccountID = actor.AccountID
	}
	if params.Status != "" {
		status := domain.RequestStatus(params.Status)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("unknown status " + params.Status)
		}
		filter.Status = &status
	}
	if params.Kind != "" {
		kind := domain.RequestKind(params.Kind)
		if !kind.IsValid() {
			return nil, apperrors.NewValidationError("unknown kind " + params.Kind)
		}
		filter.Kind = &kind
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.requests.ListRequests(ctx, filter)
}

func (s *transactionCoordinator) ListLedger(ctx context.Context, actor domain.Actor, accountID string, params dto.ListLedgerParams) (*dto.ListLedgerResponse, error) {
	if err := s.RequireAccess(ctx, actor, accountID); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	filter := domain.EntryFilter{Limit: limit + 1}
	if params.Currency != "" {
		currency, err := domain.ParseCurrency(params.Currency)
		if err != nil {
			return nil, err
		}
		filter.Currency = &currency
	}
	if params.NextToken != "" {
		sinceID, err := pagination.DecodeLedgerToken(params.NextToken)
		if err != nil {
			return nil, err
		}
		filter.SinceID = sinceID
	}

	entries, err := s.ledger.ListByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListLedgerResponse{}
	if len(entries) > limit {
		entries = entries[:limit]
		token := pagination.EncodeLedgerToken(entries[len(entries)-1].EntryID)
		resp.NextToken = &token
	}
	resp.Entries = dto.ToListLedgerEntryResponse(entries)
	return resp, nil
}

func requestEvent(t domain.EventType, req *domain.TransactionRequest, actor domain.Actor) domain.Event {
	return domain.Event{
		Type:        t,
		AccountID:   req.AccountID,
		ReferenceID: req.RequestID,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Reason:      req.RejectionReason,
		ActorID:     actor.AccountID,
		OccurredAt:  req.LastUpdatedAt,
	}
}

func positionEvent(t domain.EventType, pos *domain.InvestmentPosition, amount int64, actorID string) domain.Event {
	return domain.Event{
		Type:        t,
		AccountID:   pos.AccountID,
		ReferenceID: pos.PositionID,
		Currency:    pos.Currency,
		Amount:      amount,
		ActorID:     actorID,
		OccurredAt:  pos.LastUpdatedAt,
	}
}
