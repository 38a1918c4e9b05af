package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/ArowuTest/outline-analytics-backend/internal/repositories"
	"github.com/ArowuTest/outline-analytics-backend/pkg/mailer"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (r *fakeUserRepo) copyOf(u *models.User) *models.User {
	c := *u
	if u.OTP != nil {
		otp := *u.OTP
		c.OTP = &otp
	}
	if u.Trial != nil {
		trial := *u.Trial
		c.Trial = &trial
	}
	return &c
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = r.copyOf(user)
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return r.copyOf(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) FindVisibleByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Status.CanReceiveOTP() {
		return nil, repositories.ErrNotFound
	}
	return r.copyOf(u), nil
}

func (r *fakeUserRepo) ReplaceOTP(_ context.Context, id primitive.ObjectID, otp models.OTP, statuses []models.UserStatus) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !containsStatus(statuses, u.Status) {
		return nil, repositories.ErrNotFound
	}
	u.OTP = &otp
	return r.copyOf(u), nil
}

func (r *fakeUserRepo) IncrementOTPAttempts(_ context.Context, id primitive.ObjectID, value string, maxAttempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.OTP == nil || u.OTP.Value != value || u.OTP.Attempts >= maxAttempts {
		return repositories.ErrNotFound
	}
	u.OTP.Attempts++
	return nil
}

func (r *fakeUserRepo) ConsumeOTP(_ context.Context, id primitive.ObjectID, value string, maxAttempts int, trial *models.Trial) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.OTP == nil || u.OTP.Value != value || u.OTP.Attempts >= maxAttempts {
		return nil, repositories.ErrNotFound
	}
	if trial != nil {
		if u.Status != models.UserStatusUnverified {
			return nil, repositories.ErrNotFound
		}
		t := *trial
		u.Status = models.UserStatusActive
		u.Trial = &t
	}
	u.OTP = nil
	return r.copyOf(u), nil
}

func (r *fakeUserRepo) UpdateName(_ context.Context, id primitive.ObjectID, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Status.CanReceiveOTP() {
		return nil, repositories.ErrNotFound
	}
	u.Name = name
	return r.copyOf(u), nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.UserStatus) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.Status = status
	return r.copyOf(u), nil
}

func containsStatus(list []models.UserStatus, s models.UserStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakeAppRepo struct {
	mu    sync.Mutex
	apps  map[string]*models.App
	seq   int
	order map[string]int
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: map[string]*models.App{}, order: map[string]int{}}
}

func (r *fakeAppRepo) touch(app *models.App) {
	r.seq++
	r.order[app.ID] = r.seq
}

func (r *fakeAppRepo) view(app *models.App) *models.App {
	c := *app
	c.Owner = ""
	c.Events = append([]models.EventDefinition{}, app.Events...)
	return &c
}

func (r *fakeAppRepo) owned(id, owner string, statuses ...models.AppStatus) (*models.App, bool) {
	app, ok := r.apps[id]
	if !ok || app.Owner != owner {
		return nil, false
	}
	if len(statuses) == 0 {
		return app, app.Status != models.AppStatusDeleted
	}
	for _, s := range statuses {
		if app.Status == s {
			return app, true
		}
	}
	return nil, false
}

func (r *fakeAppRepo) Create(_ context.Context, app *models.App) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[app.ID]; ok {
		return repositories.ErrDuplicate
	}
	c := *app
	if c.Events == nil {
		c.Events = []models.EventDefinition{}
	}
	r.apps[app.ID] = &c
	r.touch(&c)
	return nil
}

func (r *fakeAppRepo) CountByOwner(_ context.Context, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, app := range r.apps {
		if app.Owner == owner && app.Status != models.AppStatusDeleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppRepo) FindByIDAndOwner(_ context.Context, id, owner string) (*models.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.owned(id, owner)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.view(app), nil
}

func (r *fakeAppRepo) summaries(match func(*models.App) bool) []*models.AppSummary {
	var apps []*models.App
	for _, app := range r.apps {
		if match(app) {
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return r.order[apps[i].ID] > r.order[apps[j].ID] })
	out := []*models.AppSummary{}
	for _, app := range apps {
		out = append(out, &models.AppSummary{ID: app.ID, Name: app.Name, Domain: app.Domain, Status: app.Status})
	}
	return out
}

func (r *fakeAppRepo) FindAllByOwner(_ context.Context, owner string) ([]*models.AppSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaries(func(a *models.App) bool {
		return a.Owner == owner && a.Status != models.AppStatusDeleted
	}), nil
}

func (r *fakeAppRepo) FindDeletedByOwner(_ context.Context, owner string) ([]*models.AppSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaries(func(a *models.App) bool {
		return a.Owner == owner && a.Status == models.AppStatusDeleted
	}), nil
}

func (r *fakeAppRepo) Update(_ context.Context, id, owner string, patch models.AppPatch) (*models.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.owned(id, owner, models.AppStatusActive)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if patch.Name != nil {
		app.Name = *patch.Name
	}
	if patch.Domain != nil {
		app.Domain = *patch.Domain
	}
	r.touch(app)
	return r.view(app), nil
}

func (r *fakeAppRepo) SoftDelete(_ context.Context, id, owner string) (*models.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.Owner != owner {
		return nil, repositories.ErrNotFound
	}
	app.Status = models.AppStatusDeleted
	r.touch(app)
	return r.view(app), nil
}

func (r *fakeAppRepo) AddEvent(_ context.Context, id, owner string, def models.EventDefinition) (*models.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.owned(id, owner, models.AppStatusActive)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for _, e := range app.Events {
		if e.Event == def.Event {
			return nil, repositories.ErrDuplicateEvent
		}
	}
	app.Events = append(app.Events, def)
	r.touch(app)
	return r.view(app), nil
}

func (r *fakeAppRepo) UpdateEvent(_ context.Context, id, owner string, eventID primitive.ObjectID, patch models.EventPatch) (*models.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.owned(id, owner, models.AppStatusActive)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	idx := -1
	for i, e := range app.Events {
		if e.ID == eventID {
			idx = i
		} else if patch.Event != nil && e.Event == *patch.Event {
			return nil, repositories.ErrDuplicateEvent
		}
	}
	if idx < 0 {
		return nil, repositories.ErrEventNotFound
	}
	e := &app.Events[idx]
	if patch.Event != nil {
		e.Event = *patch.Event
	}
	if patch.SelectorType != nil {
		e.SelectorType = *patch.SelectorType
	}
	if patch.Selector != nil {
		e.Selector = *patch.Selector
	}
	if patch.Text != nil {
		e.Text = *patch.Text
	}
	if patch.Trigger != nil {
		e.Trigger = *patch.Trigger
	}
	if patch.Page != nil {
		e.Page = *patch.Page
	}
	r.touch(app)
	return r.view(app), nil
}

func (r *fakeAppRepo) DeleteEvents(_ context.Context, id, owner string, eventIDs []primitive.ObjectID) (*models.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.owned(id, owner, models.AppStatusActive)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	drop := map[primitive.ObjectID]bool{}
	for _, oid := range eventIDs {
		drop[oid] = true
	}
	kept := app.Events[:0]
	for _, e := range app.Events {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	app.Events = kept
	r.touch(app)
	return r.view(app), nil
}

func (r *fakeAppRepo) FindEventsByID(_ context.Context, id string) ([]models.EventDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.Status != models.AppStatusActive {
		return nil, repositories.ErrNotFound
	}
	return append([]models.EventDefinition{}, app.Events...), nil
}

func (r *fakeAppRepo) SetStatus(_ context.Context, id string, to models.AppStatus, from []models.AppStatus) (*models.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for _, s := range from {
		if app.Status == s {
			app.Status = to
			r.touch(app)
			return r.view(app), nil
		}
	}
	return nil, repositories.ErrStatusConflict
}

func (r *fakeAppRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*models.TrackingEvent
	err    error
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	event.ID = primitive.NewObjectID()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) FindByApp(_ context.Context, appID string, page, limit int64) ([]*models.TrackingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.TrackingEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].App == appID {
			matched = append(matched, r.events[i])
		}
	}
	start := (page - 1) * limit
	if start >= int64(len(matched)) {
		return []*models.TrackingEvent{}, nil
	}
	end := start + limit
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}
	return matched[start:end], nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mailer.Message{}
	}
	return m.sent[len(m.sent)-1]
}

var errStore = errors.New("store unavailable")
