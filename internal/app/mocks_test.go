package app_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"clockin/internal/domain"
)

type mockUserRepo struct {
	getUserFn    func(ctx context.Context, email string) (*domain.User, error)
	createUserFn func(ctx context.Context, u domain.User) error
	updateUserFn func(ctx context.Context, u domain.User) error
	countFn      func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetUser(ctx context.Context, email string) (*domain.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u domain.User) error {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, u domain.User) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) CountUsers(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockAuthSessionRepo struct {
	createFn        func(ctx context.Context, s domain.AuthSession) error
	getFn           func(ctx context.Context, token string) (*domain.AuthSession, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context, now time.Time) error
}

func (m *mockAuthSessionRepo) CreateAuthSession(ctx context.Context, s domain.AuthSession) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockAuthSessionRepo) GetAuthSession(ctx context.Context, token string) (*domain.AuthSession, error) {
	if m.getFn != nil {
		return m.getFn(ctx, token)
	}
	return nil, nil
}

func (m *mockAuthSessionRepo) DeleteAuthSession(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockAuthSessionRepo) DeleteExpiredAuthSessions(ctx context.Context, now time.Time) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return nil
}

// fakeSessionRepo keeps sessions in a map. The *Fn hooks, when set, replace
// the matching method.
type fakeSessionRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Session

	addFn    func(ctx context.Context, s domain.Session) (int64, error)
	deleteFn func(ctx context.Context, id int64) error
	listFn   func(ctx context.Context, userID string, limit int) ([]domain.Session, error)
}

func newFakeSessionRepo(seed ...domain.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{items: make(map[int64]domain.Session)}
	for _, s := range seed {
		if s.ID > r.nextID {
			r.nextID = s.ID
		}
		r.items[s.ID] = s
	}
	return r
}

func (r *fakeSessionRepo) AddSession(ctx context.Context, s domain.Session) (int64, error) {
	if r.addFn != nil {
		return r.addFn(ctx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.items[s.ID] = s
	return s.ID, nil
}

func (r *fakeSessionRepo) GetSession(_ context.Context, id int64) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSessionRepo) UpdateSession(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.items[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) DeleteSession(ctx context.Context, id int64) error {
	if r.deleteFn != nil {
		return r.deleteFn(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeSessionRepo) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	if r.listFn != nil {
		return r.listFn(ctx, userID, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, s := range r.items {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) ListSessionsByDate(ctx context.Context, userID, day string) ([]domain.Session, error) {
	all, err := r.ListSessionsByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	var out []domain.Session
	for _, s := range all {
		if s.Date == day {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func (r *fakeSettingsRepo) GetSetting(_ context.Context, key string) (string, bool, error) {
	if r.getErr != nil {
		return "", false, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *fakeSettingsRepo) SetSetting(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values == nil {
		r.values = make(map[string]string)
	}
	r.values[key] = value
	return nil
}

func (r *fakeSettingsRepo) DeleteSetting(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}

type recordingNotifier struct {
	notices []domain.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice domain.Notice) {
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) count(sev domain.Severity) int {
	c := 0
	for _, x := range n.notices {
		if x.Severity == sev {
			c++
		}
	}
	return c
}

var errBoom = errors.New("boom")

func at(day, hm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+hm, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func utcSchedule() domain.Schedule {
	s := domain.DefaultSchedule
	s.Location = time.UTC
	return s
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
