package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/coursebite/internal/identity/entity"
	"github.com/shandysiswandi/coursebite/internal/pkg/config"
	"github.com/shandysiswandi/coursebite/internal/pkg/goerror"
	"github.com/shandysiswandi/coursebite/internal/pkg/goroutine"
	"github.com/shandysiswandi/coursebite/internal/pkg/hash"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/jwt"
	"github.com/shandysiswandi/coursebite/internal/pkg/validator"
	"github.com/shandysiswandi/coursebite/internal/shared/authz"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type seqToken struct {
	mu sync.Mutex
	n  int
}

func (s *seqToken) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%064x", s.n)
}

type fakeJWT struct{}

func (fakeJWT) Generate(sub jwt.Subject) (string, error) {
	return fmt.Sprintf("access-%d-%s", sub.UserID, strings.Join(sub.Roles, ",")), nil
}

func (fakeJWT) Verify(string) (jwt.Claims, error) { return jwt.Claims{}, jwt.ErrInvalidToken }

type fakeLimiter struct {
	mu        sync.Mutex
	markers   map[string]bool
	err       error
	remaining time.Duration
	ttlErr    error
}

func (l *fakeLimiter) Allow(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.markers[key] {
		return false, nil
	}
	l.markers[key] = true
	return true, nil
}

func (l *fakeLimiter) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.markers, key)
	return nil
}

func (l *fakeLimiter) Remaining(_ context.Context, key string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ttlErr != nil {
		return 0, l.ttlErr
	}
	if !l.markers[key] {
		return 0, nil
	}
	return l.remaining, nil
}

type sentSMS struct{ phone, text string }

type fakeSMS struct {
	mu   sync.Mutex
	fail bool
	sent []sentSMS
}

func (f *fakeSMS) Send(_ context.Context, phone, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentSMS{phone: phone, text: text})
	return !f.fail
}

// lastCode extracts the code from the latest message.
func (f *fakeSMS) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	text := f.sent[len(f.sent)-1].text
	return text[len(text)-entity.OTPCodeLength:]
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []UserSignedUpEvent
}

func (m *fakeMessaging) PublishUserSignedUp(_ context.Context, msg UserSignedUpEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, msg)
	return nil
}

type fakeToken struct {
	entity.RefreshToken
	revoked    bool
	replacedBy *int64
}

// fakeRepo keeps identity state in memory with the same outcomes as the Postgres repository.
type fakeRepo struct {
	mu       sync.Mutex
	otps     []*entity.OTP
	users    map[string]*entity.User
	profiles map[int64]*entity.Profile
	tokens   map[string]*fakeToken
	issueErr error
	// sessionErr fails the session insert of VerifyOTP and rolls it back.
	sessionErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    map[string]*entity.User{},
		profiles: map[int64]*entity.Profile{},
		tokens:   map[string]*fakeToken{},
	}
}

func (r *fakeRepo) IssueOTP(_ context.Context, otp entity.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.issueErr != nil {
		return r.issueErr
	}
	for _, o := range r.otps {
		if o.PhoneNumber == otp.PhoneNumber && !o.IsVerified && o.ExpiresAt.After(otp.CreatedAt) {
			if o.CodeHash == otp.CodeHash {
				return goerror.ErrConflict
			}
		}
	}
	for _, o := range r.otps {
		if o.PhoneNumber == otp.PhoneNumber && !o.IsVerified && o.ExpiresAt.After(otp.CreatedAt) {
			o.ExpiresAt = otp.CreatedAt
		}
	}
	r.otps = append(r.otps, &otp)
	return nil
}

func (r *fakeRepo) VerifyOTP(_ context.Context, phone string, now time.Time, matches func(string) bool, nu entity.NewUser) (*entity.SignIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *entity.OTP
	for _, o := range r.otps {
		if o.PhoneNumber == phone && !o.IsVerified {
			if latest == nil || !o.CreatedAt.Before(latest.CreatedAt) {
				latest = o
			}
		}
	}
	if latest == nil {
		return nil, entity.ErrOTPNotFoundOrExpired
	}
	attempted := *latest
	if err := attempted.Attempt(now, matches); err != nil {
		*latest = attempted
		return nil, err
	}

	signIn := &entity.SignIn{}
	if user, ok := r.users[phone]; ok {
		signIn.User = *user
	} else {
		signIn.User = entity.User{ID: nu.ID, PhoneNumber: phone, Status: entity.UserStatusActive, Roles: []authz.Role{nu.Role}, CreatedAt: now}
		signIn.Created = true
	}

	if nu.Session != nil && signIn.User.Status == entity.UserStatusActive {
		if r.sessionErr != nil {
			return nil, r.sessionErr
		}
		rt := *nu.Session
		rt.UserID = signIn.User.ID
		r.tokens[rt.Token] = &fakeToken{RefreshToken: rt}
	}

	*latest = attempted
	if signIn.Created {
		user := signIn.User
		r.users[phone] = &user
		r.profiles[user.ID] = &entity.Profile{User: user, MembershipDate: now}
	}
	return signIn, nil
}

func (r *fakeRepo) userByID(id int64) *entity.User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.userByID(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetProfile(_ context.Context, userID int64) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *p
	cp.User = *r.userByID(userID)
	return &cp, nil
}

func (r *fakeRepo) ListProfiles(_ context.Context, filter entity.ProfileListFilter) ([]entity.Profile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Profile, 0)
	for _, p := range r.profiles {
		if filter.Search == "" || strings.Contains(p.User.PhoneNumber, filter.Search) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.ID < out[j].User.ID })
	total := int64(len(out))
	start := min(int(filter.Offset), len(out))
	end := min(start+int(filter.Size), len(out))
	return out[start:end], total, nil
}

func (r *fakeRepo) UpdateProfile(_ context.Context, in entity.UpdateProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[in.UserID]
	if !ok {
		return goerror.ErrNotFound
	}
	for id, other := range r.profiles {
		if id != in.UserID && in.Email != "" && other.Email == in.Email {
			return goerror.ErrConflict
		}
	}
	p.FirstName, p.LastName, p.NationalID, p.Email = in.FirstName, in.LastName, in.NationalID, in.Email
	p.BirthDate = in.BirthDate
	return nil
}

func (r *fakeRepo) UpdateProfileAvatar(_ context.Context, userID int64, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	p.AvatarURL = avatarURL
	return nil
}

func (r *fakeRepo) ReplaceUserRoles(_ context.Context, userID int64, roles []authz.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.userByID(userID)
	if u == nil {
		return goerror.ErrNotFound
	}
	u.Roles = slices.Clone(roles)
	return nil
}

func (r *fakeRepo) GetUserRefreshToken(_ context.Context, token string) (*entity.UserRefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	u := r.userByID(t.UserID)
	return &entity.UserRefreshToken{
		UserID:                   u.ID,
		UserPhoneNumber:          u.PhoneNumber,
		UserStatus:               u.Status,
		UserRoles:                u.Roles,
		RefreshID:                t.ID,
		RefreshRevoked:           t.revoked,
		RefreshReplacedByTokenID: t.replacedBy,
		RefreshExpiresAt:         t.ExpiresAt,
	}, nil
}

func (r *fakeRepo) RotateRefreshToken(_ context.Context, ro entity.RotateRefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == ro.OldID {
			if t.revoked {
				return goerror.ErrNotFound
			}
			t.revoked = true
			newID := ro.NewID
			t.replacedBy = &newID
			r.tokens[ro.NewToken] = &fakeToken{RefreshToken: entity.RefreshToken{
				ID: ro.NewID, UserID: ro.UserID, Token: ro.NewToken, ExpiresAt: ro.NewExpiresAt,
			}}
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (r *fakeRepo) RevokeRefreshToken(_ context.Context, token string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.UserID != userID || t.revoked {
		return false, nil
	}
	t.revoked = true
	return true, nil
}

func (r *fakeRepo) RevokeAllRefreshToken(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.revoked = true
		}
	}
	return nil
}

type suite struct {
	uc        *Usecase
	repo      *fakeRepo
	limiter   *fakeLimiter
	sms       *fakeSMS
	messaging *fakeMessaging
	clock     *fakeClock
	workers   *goroutine.Manager
	storage   *fakeStorage
}

const testConfig = `
modules:
  identity:
    otp_ttl_seconds: 120
    otp_resend_window_seconds: 60
    refresh_token_ttl_days: 30
    avatar_bucket: avatars
    avatar_base_url: https://cdn.example.com/avatars
    avatar_max_size_bytes: 16
`

func newSuite(t *testing.T) *suite {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)
	az, err := authz.NewAuthorizer()
	require.NoError(t, err)

	s := &suite{
		repo:      newFakeRepo(),
		limiter:   &fakeLimiter{markers: map[string]bool{}},
		sms:       &fakeSMS{},
		messaging: &fakeMessaging{},
		clock:     &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		workers:   goroutine.NewManager(4),
		storage:   &fakeStorage{objects: map[string][]byte{}},
	}
	s.uc = New(Dependency{
		RepoDB:        s.repo,
		RepoMessaging: s.messaging,
		Limiter:       s.limiter,
		SMS:           s.sms,
		Validator:     v,
		Config:        cfg,
		Storage:       s.storage,
		HMAC:          hash.NewHMACSHA256(testSecret),
		UID:           &seqID{},
		UUID:          &seqToken{},
		OID:           &seqToken{},
		Clock:         s.clock,
		JWT:           fakeJWT{},
		Authorizer:    az,
		Instrument:    instrument.NewNoop(),
		Goroutine:     s.workers,
	})
	return s
}

const testSecret = "test-secret"

// hashToken returns the stored form of a refresh token.
func hashToken(t *testing.T, token string) string {
	t.Helper()
	h, err := hash.NewHMACSHA256(testSecret).Hash(token)
	require.NoError(t, err)
	return string(h)
}

func withAuth(userID int64, roles ...authz.Role) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID, Roles: authz.RoleNames(roles)})
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected *goerror.Error, got %v", err)
	require.Equal(t, code, gerr.Code(), gerr.Msg())
}
