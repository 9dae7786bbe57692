package services

import (
	"testing"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
	"bartab_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStaffRepo struct {
	staff  map[int64]*models.Staff
	nextID int64
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{staff: map[int64]*models.Staff{}, nextID: 1}
}

func (r *fakeStaffRepo) add(s models.Staff) *models.Staff {
	if s.ID == 0 {
		s.ID = r.nextID
	}
	if s.ID >= r.nextID {
		r.nextID = s.ID + 1
	}
	stored := s
	r.staff[stored.ID] = &stored
	return &stored
}

func (r *fakeStaffRepo) CreateStaff(_ repositories.SQLExecutor, staff *models.Staff) (int64, error) {
	for _, s := range r.staff {
		if s.Username == staff.Username {
			return 0, repositories.ErrDuplicateKey
		}
	}
	staff.ID = r.nextID
	r.nextID++
	stored := *staff
	r.staff[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeStaffRepo) GetStaffByID(id int64) (*models.Staff, error) {
	s, ok := r.staff[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStaffRepo) GetStaffByUsername(username string) (*models.Staff, error) {
	for _, s := range r.staff {
		if s.Username == username {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeStaffRepo) GetStaffMembers(int, int) ([]models.Staff, int, error) {
	out := []models.Staff{}
	for _, s := range r.staff {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *fakeStaffRepo) UpdateStaff(_ repositories.SQLExecutor, staff *models.Staff) error {
	if _, ok := r.staff[staff.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *staff
	r.staff[stored.ID] = &stored
	return nil
}

func (r *fakeStaffRepo) DeactivateStaff(_ repositories.SQLExecutor, id int64) error {
	s, ok := r.staff[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.Active = false
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestLogin(t *testing.T) {
	repo := newFakeStaffRepo()
	repo.add(models.Staff{
		Username:     "anna",
		PasswordHash: hashPassword(t, "correct-horse"),
		FullName:     "Anna Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	})
	svc := NewAuthService(repo)

	resp, err := svc.Login(LoginRequest{Username: "anna", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "anna", resp.Staff.Username)

	claims, err := utils.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeStaffRepo()
	repo.add(models.Staff{
		Username:     "anna",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         models.RoleAdmin,
		Active:       true,
	})
	svc := NewAuthService(repo)

	_, err := svc.Login(LoginRequest{Username: "anna", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveStaff(t *testing.T) {
	repo := newFakeStaffRepo()
	repo.add(models.Staff{
		Username:     "gone",
		PasswordHash: hashPassword(t, "pw-still-valid"),
		Role:         models.RoleBartender,
		Active:       false,
	})
	svc := NewAuthService(repo)

	_, err := svc.Login(LoginRequest{Username: "gone", Password: "pw-still-valid"})
	assert.ErrorIs(t, err, ErrStaffInactive)
}

func TestRefreshToken(t *testing.T) {
	repo := newFakeStaffRepo()
	staff := repo.add(models.Staff{
		Username: "anna",
		Role:     models.RoleAdmin,
		Active:   true,
	})
	svc := NewAuthService(repo)

	refresh, err := utils.GenerateRefreshToken(staff.ID)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(RefreshRequest{RefreshToken: refresh})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.RefreshToken(RefreshRequest{RefreshToken: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
