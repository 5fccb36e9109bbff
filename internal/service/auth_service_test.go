package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastly/food-ordering-backend/internal/model"
	"github.com/feastly/food-ordering-backend/internal/repository"
	"github.com/feastly/food-ordering-backend/internal/service"
	"github.com/feastly/food-ordering-backend/internal/utils"
)

var authTestSecret = []byte("an-hmac-key-for-the-test-suite!!")

type fakeUserStore struct {
	byID   map[uint64]model.User
	nextID uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: make(map[uint64]model.User)}
}

func (s *fakeUserStore) Create(_ context.Context, fullName, email, passwordHash string, roleID uint64) (model.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	s.nextID++
	u := model.User{ID: s.nextID, FullName: fullName, Email: email, PasswordHash: passwordHash, RoleID: roleID}
	s.byID[u.ID] = u
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeRoleStore struct {
	roles map[string]model.Role
}

func (s *fakeRoleStore) GetByName(_ context.Context, name string) (model.Role, error) {
	r, ok := s.roles[name]
	if !ok {
		return model.Role{}, repository.ErrNotFound
	}
	return r, nil
}

type fakeLedger struct {
	byToken map[string]*model.RefreshToken
	nextID  uint64
	ttl     time.Duration
}

func newFakeLedger(ttl time.Duration) *fakeLedger {
	return &fakeLedger{byToken: make(map[string]*model.RefreshToken), ttl: ttl}
}

func (l *fakeLedger) mint(userID uint64) *model.RefreshToken {
	l.nextID++
	t := &model.RefreshToken{
		ID:         l.nextID,
		UserID:     userID,
		Token:      fmt.Sprintf("refresh-%d", l.nextID),
		ExpiryDate: time.Now().UTC().Add(l.ttl),
	}
	l.byToken[t.Token] = t
	return t
}

func (l *fakeLedger) Issue(_ context.Context, userID uint64) (model.RefreshToken, error) {
	for v, t := range l.byToken {
		if t.UserID == userID {
			delete(l.byToken, v)
		}
	}
	return *l.mint(userID), nil
}

func (l *fakeLedger) Lookup(_ context.Context, token string) (model.RefreshToken, error) {
	t, ok := l.byToken[token]
	if !ok {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return *t, nil
}

func (l *fakeLedger) Delete(_ context.Context, token string) error {
	delete(l.byToken, token)
	return nil
}

func (l *fakeLedger) Rotate(_ context.Context, old model.RefreshToken) (model.RefreshToken, error) {
	if prev, ok := l.byToken[old.Token]; ok {
		prev.Revoked = true
	}
	return *l.mint(old.UserID), nil
}

func (l *fakeLedger) RevokeAllForUser(_ context.Context, userID uint64) error {
	for _, t := range l.byToken {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (l *fakeLedger) tokensFor(userID uint64) []*model.RefreshToken {
	var out []*model.RefreshToken
	for _, t := range l.byToken {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

type fakeDenylist struct {
	entries map[string]time.Time
}

func newFakeDenylist() *fakeDenylist { return &fakeDenylist{entries: make(map[string]time.Time)} }

func (d *fakeDenylist) Add(_ context.Context, token string, expiresAt time.Time) error {
	d.entries[token] = expiresAt
	return nil
}

type authFixture struct {
	svc      *service.AuthService
	users    *fakeUserStore
	ledger   *fakeLedger
	denylist *fakeDenylist
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	users := newFakeUserStore()
	roles := &fakeRoleStore{roles: map[string]model.Role{
		model.RoleCustomer: {ID: 1, Name: model.RoleCustomer},
	}}
	ledger := newFakeLedger(7 * 24 * time.Hour)
	denylist := newFakeDenylist()
	svc := service.NewAuthService(users, roles, ledger, denylist,
		authTestSecret, 15*time.Minute, 4) // min bcrypt cost keeps tests fast
	return authFixture{svc: svc, users: users, ledger: ledger, denylist: denylist}
}

func TestRegisterIssuesSingleLiveRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Email)
	assert.Equal(t, "Ada", res.FirstName)
	assert.Equal(t, "Lovelace", res.LastName)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	user, err := f.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.True(t, utils.VerifyPassword(user.PasswordHash, "s3cret"))

	tokens := f.ledger.tokensFor(user.ID)
	require.Len(t, tokens, 1)
	assert.False(t, tokens[0].Revoked)
	assert.True(t, tokens[0].ExpiryDate.After(time.Now()))

	subject, _, err := utils.VerifyAccessToken(authTestSecret, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "s3cret")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "Someone", "Else", "ada@example.com", "other")
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegisterWithoutSeededRole(t *testing.T) {
	users := newFakeUserStore()
	roles := &fakeRoleStore{roles: map[string]model.Role{}} // seed never ran
	svc := service.NewAuthService(users, roles, newFakeLedger(time.Hour), newFakeDenylist(),
		authTestSecret, 15*time.Minute, 4)

	_, err := svc.Register(context.Background(), "Ada", "Lovelace", "ada@example.com", "s3cret")
	assert.ErrorIs(t, err, service.ErrRoleNotSeeded)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), "", "", "ada@example.com", "s3cret")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = f.svc.Register(context.Background(), "Ada", "", "ada@example.com", "")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestLoginFailureIsUndifferentiated(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "s3cret")
	require.NoError(t, err)

	// Unknown email and wrong password produce the identical error value:
	// the response leaks nothing about which factor failed.
	_, errUnknown := f.svc.Login(ctx, "nobody@example.com", "s3cret")
	_, errWrongPw := f.svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, errUnknown, service.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, service.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestLoginSplitsStoredFullName(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Ada", "King Lovelace", "ada@example.com", "s3cret")
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.FirstName)
	assert.Equal(t, "King Lovelace", res.LastName)
}

func TestLoginReplacesPriorRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "s3cret")
	require.NoError(t, err)

	login, err := f.svc.Login(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, login.RefreshToken)

	// The registration-time token was discarded, not just superseded.
	_, err = f.ledger.Lookup(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	user, err := f.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Len(t, f.ledger.tokensFor(user.ID), 1)
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "s3cret")
	require.NoError(t, err)

	first, err := f.svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, first.RefreshToken)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.Equal(t, "Ada", first.FirstName)

	old, err := f.ledger.Lookup(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.True(t, old.Revoked)

	// Replaying the consumed token must fail the revoked check.
	_, err = f.svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)

	// The rotated token still works.
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshExpiredTokenIsDeleted(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "s3cret")
	require.NoError(t, err)

	// Force the stored row past expiry.
	f.ledger.byToken[reg.RefreshToken].ExpiryDate = time.Now().UTC().Add(-time.Hour)

	_, err = f.svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, service.ErrTokenExpired)

	// Cleanup-on-read: the row is gone, a retry reports not-found.
	_, err = f.ledger.Lookup(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.svc.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, service.ErrTokenNotFound)
}

func TestRefreshValidation(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Refresh(context.Background(), "   ")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = f.svc.Refresh(context.Background(), "unknown-token")
	assert.ErrorIs(t, err, service.ErrTokenNotFound)
}

func TestLogoutRevokesAndDenylists(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "s3cret")
	require.NoError(t, err)

	res, err := f.svc.Logout(ctx, "Bearer "+reg.AccessToken)
	require.NoError(t, err)
	assert.True(t, res.Success)

	user, err := f.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	for _, tok := range f.ledger.tokensFor(user.ID) {
		assert.True(t, tok.Revoked)
	}
	assert.Contains(t, f.denylist.entries, reg.AccessToken)
}

func TestLogoutHeaderValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Logout(ctx, "")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = f.svc.Logout(ctx, "Basic dXNlcjpwdw==")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = f.svc.Logout(ctx, "Bearer   ")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestLogoutWithMalformedTokenIsAnOutcomeNotAnError(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.Logout(context.Background(), "Bearer not-a-real-token")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, f.denylist.entries)
}

func TestSplitFullName(t *testing.T) {
	cases := []struct {
		full, first, last string
	}{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Ada King Lovelace", "Ada", "King Lovelace"},
		{"Ada", "Ada", ""},
		{"  Ada Lovelace  ", "Ada", "Lovelace"},
	}
	for _, tc := range cases {
		first, last := service.SplitFullName(tc.full)
		assert.Equal(t, tc.first, first, "full=%q", tc.full)
		assert.Equal(t, tc.last, last, "full=%q", tc.full)
	}
}
