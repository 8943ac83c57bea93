package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTransactionRequest_EmptyStringsBecomeNull(t *testing.T) {
	req := domain.TransactionRequest{
		RequestID: "req-1",
		AccountID: "acc-1",
		Kind:      domain.KindDeposit,
		Currency:  domain.EUR,
		Amount:    100,
		Status:    domain.StatusPending,
	}

	m := ToModelTransactionRequest(req)
	assert.Nil(t, m.IdempotencyKey)
	assert.Nil(t, m.PlanID)
	assert.Nil(t, m.RejectionReason)
	assert.Equal(t, req, ToDomainTransactionRequest(m))
}

func TestLedgerEntry_MemoRoundTrip(t *testing.T) {
	e := domain.LedgerEntry{EntryID: "e-1", AccountID: "acc-1", Memo: "opening balance"}
	m := ToModelLedgerEntry(e)
	if assert.NotNil(t, m.Memo) {
		assert.Equal(t, "opening balance", *m.Memo)
	}
	assert.Equal(t, e, ToDomainLedgerEntry(m))
}

func TestDepositAddress_Unassigned(t *testing.T) {
	d := ToDomainDepositAddress(models.DepositAddress{Address: "bc1q-pool-1", Asset: "BTC", CreatedAt: time.Now()})
	assert.Empty(t, d.AccountID)
	assert.True(t, d.AssignedAt.IsZero())
}
