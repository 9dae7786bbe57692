package services

import (
	"testing"

	"bartab_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRaiseCreditsBalance(t *testing.T) {
	db := &stubDB{}
	users := newFakeUserRepo()
	raises := &fakeRaiseRepo{}
	audit := &fakeAuditRepo{}
	user := users.add(models.User{Name: "Mara", Active: true, Balance: -300})

	svc := NewRaiseService(raises, users, audit, db)
	resp, err := svc.CreateRaise(CreateRaiseRequest{UserID: user.ID, Amount: 5000, StaffID: 3})
	require.NoError(t, err)

	assert.Equal(t, int64(4700), resp.NewBalance)
	assert.Equal(t, int64(4700), users.users[user.ID].Balance)
	require.Len(t, raises.raises, 1)
	assert.Equal(t, int64(5000), raises.raises[0].Amount)
	assert.True(t, raises.raises[0].IsCash)
	assert.Equal(t, int64(3), raises.raises[0].StaffID)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionRaise, audit.entries[0].Action)
	assert.True(t, db.lastTx().committed)
}

func TestCreateRaiseNegativeCorrection(t *testing.T) {
	db := &stubDB{}
	users := newFakeUserRepo()
	user := users.add(models.User{Name: "Mara", Active: true, Balance: 1000})

	svc := NewRaiseService(&fakeRaiseRepo{}, users, &fakeAuditRepo{}, db)
	resp, err := svc.CreateRaise(CreateRaiseRequest{UserID: user.ID, Amount: -200, StaffID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(800), resp.NewBalance)
}

func TestCreateRaiseBankTransfer(t *testing.T) {
	db := &stubDB{}
	users := newFakeUserRepo()
	raises := &fakeRaiseRepo{}
	user := users.add(models.User{Name: "Mara", Active: true})

	svc := NewRaiseService(raises, users, &fakeAuditRepo{}, db)
	isCash := false
	_, err := svc.CreateRaise(CreateRaiseRequest{UserID: user.ID, Amount: 100, IsCash: &isCash})
	require.NoError(t, err)
	assert.False(t, raises.raises[0].IsCash)
}

func TestCreateRaiseZeroAmountRejected(t *testing.T) {
	svc := NewRaiseService(&fakeRaiseRepo{}, newFakeUserRepo(), &fakeAuditRepo{}, &stubDB{})
	_, err := svc.CreateRaise(CreateRaiseRequest{UserID: 1, Amount: 0})
	assert.ErrorIs(t, err, ErrZeroRaiseAmount)
}

func TestCreateRaiseUnknownUser(t *testing.T) {
	svc := NewRaiseService(&fakeRaiseRepo{}, newFakeUserRepo(), &fakeAuditRepo{}, &stubDB{})
	_, err := svc.CreateRaise(CreateRaiseRequest{UserID: 99, Amount: 100})
	assert.ErrorIs(t, err, ErrRaiseUserNotFound)
}

func TestCreateRaiseGuestRejected(t *testing.T) {
	users := newFakeUserRepo()
	host := users.add(models.User{Name: "Host", Active: true})
	guest := users.add(models.User{Name: "Guest", Active: true, IsGuest: true, HostID: &host.ID})

	svc := NewRaiseService(&fakeRaiseRepo{}, users, &fakeAuditRepo{}, &stubDB{})
	_, err := svc.CreateRaise(CreateRaiseRequest{UserID: guest.ID, Amount: 100})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetRaiseByID(t *testing.T) {
	raises := &fakeRaiseRepo{}
	users := newFakeUserRepo()
	user := users.add(models.User{Name: "Mara", Active: true})
	svc := NewRaiseService(raises, users, &fakeAuditRepo{}, &stubDB{})

	created, err := svc.CreateRaise(CreateRaiseRequest{UserID: user.ID, Amount: 2500, StaffID: 3})
	require.NoError(t, err)

	raise, err := svc.GetRaiseByID(created.Raise.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), raise.Amount)
	assert.Equal(t, user.ID, raise.UserID)

	_, err = svc.GetRaiseByID(999)
	assert.ErrorIs(t, err, ErrRaiseNotFound)
}
