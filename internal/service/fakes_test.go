package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fsic-records-api-server/internal/compliance"
	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// memEstablishments is an in-memory EstablishmentRepository.
type memEstablishments struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Establishment
	fail error
}

func newMemEstablishments() *memEstablishments {
	return &memEstablishments{docs: map[primitive.ObjectID]models.Establishment{}}
}

func (m *memEstablishments) Create(_ context.Context, e *models.Establishment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, d := range m.docs {
		if d.FSICNumber == e.FSICNumber {
			return repository.ErrDuplicateKey
		}
	}
	e.ID = primitive.NewObjectID()
	m.docs[e.ID] = *e
	return nil
}

func (m *memEstablishments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Establishment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	e, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *memEstablishments) FindByFSIC(_ context.Context, fsic string) (*models.Establishment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, e := range m.docs {
		if e.FSICNumber == fsic {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memEstablishments) List(_ context.Context, f models.EstablishmentFilter) ([]models.Establishment, error) {
	return m.where(func(e models.Establishment) bool {
		if f.Active != nil && e.IsActive != *f.Active {
			return false
		}
		return f.Search == "" || strings.Contains(strings.ToLower(e.EstablishmentName+e.FSICNumber+e.OwnerName), strings.ToLower(f.Search))
	})
}

func (m *memEstablishments) Update(_ context.Context, e *models.Establishment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[e.ID]; !ok {
		return repository.ErrNotFound
	}
	m.docs[e.ID] = *e
	return nil
}

func (m *memEstablishments) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memEstablishments) mutate(id primitive.ObjectID, fn func(*models.Establishment)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	e, ok := m.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&e)
	m.docs[id] = e
	return nil
}

func (m *memEstablishments) SetActive(_ context.Context, id primitive.ObjectID, active bool, at time.Time) error {
	return m.mutate(id, func(e *models.Establishment) { e.IsActive, e.UpdatedAt = active, at })
}

func (m *memEstablishments) SetCompliance(_ context.Context, id primitive.ObjectID, value string, at time.Time) error {
	return m.mutate(id, func(e *models.Establishment) { e.Compliance, e.UpdatedAt = value, at })
}

func (m *memEstablishments) PushRemark(_ context.Context, id primitive.ObjectID, r models.Remark) error {
	return m.mutate(id, func(e *models.Establishment) { e.Remarks, e.UpdatedAt = append(e.Remarks, r), r.Date })
}

func (m *memEstablishments) SetIssuance(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return m.mutate(id, func(e *models.Establishment) { e.LastIssuanceDate, e.UpdatedAt = &at, at })
}

func (m *memEstablishments) SetCertificateURL(_ context.Context, id primitive.ObjectID, url string, at time.Time) error {
	return m.mutate(id, func(e *models.Establishment) { e.CertificateURL, e.UpdatedAt = url, at })
}

func (m *memEstablishments) FindDue(_ context.Context, now time.Time) ([]models.Establishment, error) {
	return m.where(func(e models.Establishment) bool { return compliance.IsDueListed(e, now) })
}

func (m *memEstablishments) FindInspectionsToday(_ context.Context, now time.Time) ([]models.Establishment, error) {
	return m.where(func(e models.Establishment) bool { return compliance.HasInspectionToday(e, now) })
}

func (m *memEstablishments) Stats(_ context.Context, now time.Time) (models.Analytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return models.Analytics{}, m.fail
	}
	var a models.Analytics
	byMonth := map[time.Month]int64{}
	for _, e := range m.docs {
		if !e.IsActive {
			a.Archived++
			continue
		}
		a.TotalActive++
		if e.Compliance == models.Compliant {
			a.Compliant++
		} else {
			a.NonCompliant++
		}
		if compliance.IsDueListed(e, now) {
			a.DueThisMonth++
		}
		if compliance.HasInspectionToday(e, now) {
			a.InspectionsToday++
		}
		if e.LastIssuanceDate != nil && e.LastIssuanceDate.Year() == now.Year() {
			byMonth[e.LastIssuanceDate.Month()]++
		}
	}
	a.IssuancesByMonth = repository.MonthlyBuckets(byMonth)
	return a, nil
}

func (m *memEstablishments) where(pred func(models.Establishment) bool) ([]models.Establishment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := []models.Establishment{}
	for _, e := range m.docs {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// memUsers is an in-memory UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
	fail  error
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[primitive.ObjectID]models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, x := range m.users {
		if x.Username == u.Username {
			return repository.ErrDuplicateKey
		}
	}
	u.ID = primitive.NewObjectID()
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return 0, m.fail
	}
	return int64(len(m.users)), nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, first, last string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FirstName, u.LastName, u.UpdatedAt = first, last, at
	m.users[id] = u
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password, u.UpdatedAt = hash, at
	m.users[id] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// stubRenderer returns a fixed body.
type stubRenderer struct{ calls int }

func (r *stubRenderer) Render(models.Establishment, time.Time) ([]byte, error) {
	r.calls++
	return []byte("%PDF-stub"), nil
}

type stubStore struct {
	keys []string
	err  error
}

func (s *stubStore) UploadFile(_ context.Context, file io.Reader, key, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.test/" + key, nil
}

type recordingNotifier struct{ events []string }

func (n *recordingNotifier) Broadcast(event string, _ interface{}) {
	n.events = append(n.events, event)
}
