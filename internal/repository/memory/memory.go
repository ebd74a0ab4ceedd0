// Package memory provides in-memory repositories with the same behaviour as the
// PostgreSQL ones, including unique constraints and cascades. It backs the
// "memory" database driver for local development and the service tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/repository"
)

// Store holds every table. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	seq       int64
	users     map[string]models.User
	events    map[string]models.Event
	apps      map[string]models.VolunteerApplication
	donations map[string]models.Donation
	contacts  []models.ContactMessage
	tokens    map[string]models.RefreshToken
	audits    []models.AuditLog
	order     map[string]int64
	now       func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:     make(map[string]models.User),
		events:    make(map[string]models.Event),
		apps:      make(map[string]models.VolunteerApplication),
		donations: make(map[string]models.Donation),
		tokens:    make(map[string]models.RefreshToken),
		order:     make(map[string]int64),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the account repository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Events returns the event repository.
func (s *Store) Events() *EventRepository { return &EventRepository{s: s} }

// Applications returns the application repository.
func (s *Store) Applications() *ApplicationRepository { return &ApplicationRepository{s: s} }

// Donations returns the donation repository.
func (s *Store) Donations() *DonationRepository { return &DonationRepository{s: s} }

// Contacts returns the contact message repository.
func (s *Store) Contacts() *ContactRepository { return &ContactRepository{s: s} }

// Stores exposes the store through the backend-neutral repository bundle.
func (s *Store) Stores() repository.Stores {
	return repository.Stores{
		Users:        s.Users(),
		Events:       s.Events(),
		Applications: s.Applications(),
		Donations:    s.Donations(),
		Contacts:     s.Contacts(),
	}
}

// AuditLogs returns a copy of every recorded audit entry.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.audits...)
}

// ContactMessages returns a copy of every stored contact message.
func (s *Store) ContactMessages() []models.ContactMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ContactMessage(nil), s.contacts...)
}

// stamp records insertion order to break timestamp ties. Callers hold the lock.
func (s *Store) stamp(id string) {
	s.seq++
	s.order[id] = s.seq
}

func paginate[T any](items []T, page models.PageRequest) []T {
	if page.PageSize == 0 {
		page = models.NewPageRequest(page.Page, 0)
	}
	start := page.Offset()
	if start >= len(items) {
		return make([]T, 0)
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// UserRepository is the in-memory account table.
type UserRepository struct{ s *Store }

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.LastLogin = &ts
		u.UpdatedAt = ts
		r.s.users[id] = u
	}
	return nil
}

func (r *UserRepository) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if filter.OnlyID != "" && u.ID != filter.OnlyID {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return r.s.order[out[i].ID] < r.s.order[out[j].ID] })
	return paginate(out, filter.Page), len(out), nil
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	r.s.stamp(user.ID)
	return nil
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.users[user.ID]
	if !ok {
		return sql.ErrNoRows
	}
	for id, u := range r.s.users {
		if id != user.ID && strings.EqualFold(u.Username, user.Username) {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = r.s.now()
	current.Username = user.Username
	current.Email = user.Email
	current.FirstName = user.FirstName
	current.LastName = user.LastName
	current.Role = user.Role
	current.UpdatedAt = user.UpdatedAt
	r.s.users[user.ID] = current
	return nil
}

// Delete removes the account with the same cascades as the SQL schema.
func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.users, id)
	for eid, e := range r.s.events {
		if e.CreatedBy == id {
			r.s.deleteEventLocked(eid)
		}
	}
	for aid, a := range r.s.apps {
		if a.VolunteerID == id {
			delete(r.s.apps, aid)
		}
	}
	for did, d := range r.s.donations {
		switch {
		case d.NGOID == id:
			delete(r.s.donations, did)
		case d.DonorID != nil && *d.DonorID == id:
			d.DonorID = nil
			r.s.donations[did] = d
		}
	}
	for tok, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, tok)
		}
	}
	return nil
}

func (r *UserRepository) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.s.now()
	}
	r.s.tokens[token.Token] = *token
	return nil
}

func (r *UserRepository) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (r *UserRepository) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, t := range r.s.tokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
			r.s.tokens[key] = t
		}
	}
	return nil
}

func (r *UserRepository) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.s.now()
	}
	r.s.audits = append(r.s.audits, *log)
	return nil
}

// EventRepository is the in-memory event table.
type EventRepository struct{ s *Store }

func (r *EventRepository) List(_ context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Event, 0)
	for _, e := range r.s.events {
		if filter.OwnerID != "" {
			if e.CreatedBy != filter.OwnerID {
				continue
			}
		} else if !e.IsPublished {
			continue
		}
		out = append(out, r.s.joinEvent(e))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.s.order[a.ID] > r.s.order[b.ID]
	})
	return paginate(out, filter.Page), len(out), nil
}

func (r *EventRepository) FindByID(_ context.Context, id string) (*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	joined := r.s.joinEvent(e)
	return &joined, nil
}

func (r *EventRepository) Create(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[event.CreatedBy]; !ok {
		return sql.ErrNoRows
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := r.s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	r.s.events[event.ID] = *event
	r.s.stamp(event.ID)
	return nil
}

func (r *EventRepository) Update(_ context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.events[event.ID]
	if !ok {
		return sql.ErrNoRows
	}
	event.UpdatedAt = r.s.now()
	event.CreatedBy = current.CreatedBy
	event.CreatedAt = current.CreatedAt
	r.s.events[event.ID] = *event
	return nil
}

func (r *EventRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return sql.ErrNoRows
	}
	r.s.deleteEventLocked(id)
	return nil
}

func (s *Store) deleteEventLocked(id string) {
	delete(s.events, id)
	for aid, a := range s.apps {
		if a.EventID == id {
			delete(s.apps, aid)
		}
	}
}

func (s *Store) joinEvent(e models.Event) models.Event {
	if owner, ok := s.users[e.CreatedBy]; ok {
		e.CreatedByUsername = owner.Username
	}
	return e
}

// ApplicationRepository is the in-memory volunteer application table.
type ApplicationRepository struct{ s *Store }

func (r *ApplicationRepository) List(_ context.Context, filter models.ApplicationFilter) ([]models.VolunteerApplication, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.VolunteerApplication, 0)
	for _, a := range r.s.apps {
		joined := r.s.joinApplication(a)
		switch {
		case filter.EventOwnerID != "":
			if joined.EventOwnerID != filter.EventOwnerID {
				continue
			}
		case filter.VolunteerID != "":
			if joined.VolunteerID != filter.VolunteerID {
				continue
			}
		default:
			continue
		}
		out = append(out, joined)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.After(out[j].AppliedAt)
		}
		return r.s.order[out[i].ID] > r.s.order[out[j].ID]
	})
	return paginate(out, filter.Page), len(out), nil
}

func (r *ApplicationRepository) FindByID(_ context.Context, id string) (*models.VolunteerApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	joined := r.s.joinApplication(a)
	return &joined, nil
}

func (r *ApplicationRepository) Exists(_ context.Context, eventID, volunteerID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.applicationExistsLocked(eventID, volunteerID), nil
}

func (r *ApplicationRepository) Create(_ context.Context, app *models.VolunteerApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.applicationExistsLocked(app.EventID, app.VolunteerID) {
		return repository.ErrDuplicate
	}
	if _, ok := r.s.events[app.EventID]; !ok {
		return sql.ErrNoRows
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = r.s.now()
	}
	r.s.apps[app.ID] = *app
	r.s.stamp(app.ID)
	return nil
}

func (r *ApplicationRepository) UpdateStatus(_ context.Context, id string, status models.ApplicationStatus, reviewedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok || a.Status != models.ApplicationPending {
		return sql.ErrNoRows
	}
	a.Status = status
	a.ReviewedAt = &reviewedAt
	r.s.apps[id] = a
	return nil
}

func (r *ApplicationRepository) SetCertificate(_ context.Context, id, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.CertificateIssued = true
	a.CertificateURL = &url
	r.s.apps[id] = a
	return nil
}

func (r *ApplicationRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok || a.Status != models.ApplicationPending {
		return sql.ErrNoRows
	}
	delete(r.s.apps, id)
	return nil
}

func (s *Store) applicationExistsLocked(eventID, volunteerID string) bool {
	for _, a := range s.apps {
		if a.EventID == eventID && a.VolunteerID == volunteerID {
			return true
		}
	}
	return false
}

func (s *Store) joinApplication(a models.VolunteerApplication) models.VolunteerApplication {
	if e, ok := s.events[a.EventID]; ok {
		a.EventTitle = e.Title
		a.EventOwnerID = e.CreatedBy
	}
	if u, ok := s.users[a.VolunteerID]; ok {
		a.VolunteerUsername = u.Username
	}
	return a
}

// DonationRepository is the in-memory donation table.
type DonationRepository struct{ s *Store }

func (r *DonationRepository) List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error) {
	all, err := r.ListAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, filter.Page), len(all), nil
}

func (r *DonationRepository) ListAll(_ context.Context, filter models.DonationFilter) ([]models.Donation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Donation, 0)
	for _, d := range r.s.donations {
		switch {
		case filter.NGOID != "":
			if d.NGOID != filter.NGOID {
				continue
			}
		case filter.DonorID != "":
			if d.DonorID == nil || *d.DonorID != filter.DonorID {
				continue
			}
		default:
			continue
		}
		out = append(out, r.s.joinDonation(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DonatedAt.Equal(out[j].DonatedAt) {
			return out[i].DonatedAt.After(out[j].DonatedAt)
		}
		return r.s.order[out[i].ID] > r.s.order[out[j].ID]
	})
	return out, nil
}

func (r *DonationRepository) FindByID(_ context.Context, id string) (*models.Donation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.donations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	joined := r.s.joinDonation(d)
	return &joined, nil
}

func (r *DonationRepository) Create(_ context.Context, donation *models.Donation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.donations {
		if d.TransactionID == donation.TransactionID {
			return repository.ErrDuplicate
		}
	}
	if donation.ID == "" {
		donation.ID = uuid.NewString()
	}
	if donation.DonatedAt.IsZero() {
		donation.DonatedAt = r.s.now()
	}
	r.s.donations[donation.ID] = *donation
	r.s.stamp(donation.ID)
	return nil
}

func (s *Store) joinDonation(d models.Donation) models.Donation {
	d.DonorUsername = nil
	if d.DonorID != nil {
		if u, ok := s.users[*d.DonorID]; ok {
			name := u.Username
			d.DonorUsername = &name
		}
	}
	if u, ok := s.users[d.NGOID]; ok {
		d.NGOUsername = u.Username
	}
	return d
}

// ContactRepository is the in-memory contact message table.
type ContactRepository struct{ s *Store }

func (r *ContactRepository) Create(_ context.Context, msg *models.ContactMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.s.now()
	}
	r.s.contacts = append(r.s.contacts, *msg)
	return nil
}
