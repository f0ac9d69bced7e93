package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"churchsite/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixedClock returns a clock that advances one minute per call, starting at start.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(time.Minute)
		return now
	}
}

var errDB = errors.New("connection refused")

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID    map[string]*domain.Event
	nextID  int
	err     error // if set, every call returns this error
	regRepo *fakeRegistrationRepo
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.byID[id]; !ok {
		return 0, domain.ErrNotFound
	}
	delete(f.byID, id)
	removed := 0
	if f.regRepo != nil {
		removed = f.regRepo.deleteByEvent(id)
	}
	return removed, nil
}

func (f *fakeEventRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if activeOnly && !e.IsActive {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// fakeRegistrationRepo is an in-memory EventRegistrationRepository. CreateWithinCapacity
// holds a mutex so it behaves like the row lock in postgres.
type fakeRegistrationRepo struct {
	mu        sync.Mutex
	events    *fakeEventRepo
	regs      []*domain.EventRegistration
	nextID    int
	err       error
	createErr error
	// skipLookup makes GetByEventAndEmail always miss, forcing the insert path.
	skipLookup bool
}

func newFakeRegistrationRepo(events *fakeEventRepo) *fakeRegistrationRepo {
	r := &fakeRegistrationRepo{events: events, nextID: 1}
	events.regRepo = r
	return r
}

func (f *fakeRegistrationRepo) CreateWithinCapacity(ctx context.Context, reg *domain.EventRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	e, ok := f.events.byID[reg.EventID]
	if !ok || !e.IsActive {
		return domain.ErrNotFound
	}
	active := 0
	for _, r := range f.regs {
		if r.EventID != reg.EventID {
			continue
		}
		if r.Email == reg.Email {
			return domain.ErrDuplicateRegistration
		}
		if r.Status != domain.StatusCancelled {
			active++
		}
	}
	if e.MaxRegistrations != nil && active >= *e.MaxRegistrations {
		return domain.ErrCapacityExceeded
	}
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	cp := *reg
	f.regs = append(f.regs, &cp)
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.EventRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.regs {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.EventRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.skipLookup {
		return nil, domain.ErrNotFound
	}
	for _, r := range f.regs {
		if r.EventID == eventID && r.Email == email {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) List(ctx context.Context, filter domain.RegistrationFilter) ([]*domain.EventRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.EventRegistration, 0)
	for i := len(f.regs) - 1; i >= 0; i-- {
		r := f.regs[i]
		if filter.EventID != "" && r.EventID != filter.EventID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		cp := *r
		if e, ok := f.events.byID[r.EventID]; ok {
			cp.EventTitle = e.Title
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.EventRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = true
	}
	out := make([]*domain.EventRegistration, 0)
	for _, r := range f.regs {
		if want[r.EventID] {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) CountActiveByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	counts := make(map[string]int)
	for _, id := range eventIDs {
		for _, r := range f.regs {
			if r.EventID == id && r.Status != domain.StatusCancelled {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (f *fakeRegistrationRepo) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus) (*domain.EventRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.regs {
		if r.ID == id {
			r.Status = status
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) deleteByEvent(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.regs[:0]
	removed := 0
	for _, r := range f.regs {
		if r.EventID == eventID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.regs = kept
	return removed
}

// fakeEmailService records confirmation emails.
type fakeEmailService struct {
	sent []*domain.RegistrationConfirmedEmailData
	err  error
}

func (f *fakeEmailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

// fakeAttendanceRepo filters in memory the same way the SQL does.
type fakeAttendanceRepo struct {
	byID   map[string]*domain.AttendanceRecord
	order  []string
	nextID int
	err    error
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{byID: make(map[string]*domain.AttendanceRecord), nextID: 1}
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, rec *domain.AttendanceRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = fmt.Sprintf("att-%d", f.nextID)
	f.nextID++
	cp := *rec
	f.byID[rec.ID] = &cp
	f.order = append(f.order, rec.ID)
	return nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (*domain.AttendanceRecord, error) {
	if rec, ok := f.byID[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, rec *domain.AttendanceRecord) error {
	if _, ok := f.byID[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *rec
	f.byID[rec.ID] = &cp
	return nil
}

func (f *fakeAttendanceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeAttendanceRepo) matching(filter domain.AttendanceFilter) []*domain.AttendanceRecord {
	out := make([]*domain.AttendanceRecord, 0)
	for _, id := range f.order {
		rec, ok := f.byID[id]
		if !ok {
			continue
		}
		if filter.ServiceDate != nil {
			start, end := domain.DayBounds(*filter.ServiceDate, filter.ServiceDate.Location())
			if rec.ServiceDate.Before(start) || !rec.ServiceDate.Before(end) {
				continue
			}
		}
		if filter.ServiceType != "" && rec.ServiceType != filter.ServiceType {
			continue
		}
		if filter.MemberName != "" && !strings.Contains(strings.ToLower(rec.MemberName), strings.ToLower(filter.MemberName)) {
			continue
		}
		if filter.IsVisitor != nil && rec.IsVisitor != *filter.IsVisitor {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ServiceDate.After(out[j].ServiceDate) })
	return out
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter domain.AttendanceFilter, page *domain.PaginationParams) ([]*domain.AttendanceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	all := f.matching(filter)
	if page == nil {
		return all, nil
	}
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (f *fakeAttendanceRepo) Count(ctx context.Context, filter domain.AttendanceFilter) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.matching(filter)), nil
}

func (f *fakeAttendanceRepo) Summarize(ctx context.Context, filter domain.AttendanceFilter) (*domain.AttendanceSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := &domain.AttendanceSummary{}
	for _, rec := range f.matching(filter) {
		s.Total++
		if rec.IsVisitor {
			s.Visitors++
		} else {
			s.Members++
		}
		if rec.IsFirstTimeVisitor {
			s.FirstTimeVisitors++
		}
	}
	return s, nil
}

type fakePastorRepo struct {
	byID   map[string]*domain.Pastor
	nextID int
}

func newFakePastorRepo() *fakePastorRepo {
	return &fakePastorRepo{byID: make(map[string]*domain.Pastor), nextID: 1}
}

func (f *fakePastorRepo) Create(ctx context.Context, p *domain.Pastor) error {
	p.ID = fmt.Sprintf("pastor-%d", f.nextID)
	f.nextID++
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePastorRepo) GetByID(ctx context.Context, id string) (*domain.Pastor, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePastorRepo) Update(ctx context.Context, p *domain.Pastor) error {
	if _, ok := f.byID[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePastorRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePastorRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Pastor, error) {
	out := make([]*domain.Pastor, 0, len(f.byID))
	for _, p := range f.byID {
		if activeOnly && !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type fakeGalleryRepo struct {
	byID   map[string]*domain.GalleryImage
	nextID int
}

func newFakeGalleryRepo() *fakeGalleryRepo {
	return &fakeGalleryRepo{byID: make(map[string]*domain.GalleryImage), nextID: 1}
}

func (f *fakeGalleryRepo) Create(ctx context.Context, img *domain.GalleryImage) error {
	img.ID = fmt.Sprintf("img-%d", f.nextID)
	f.nextID++
	cp := *img
	f.byID[img.ID] = &cp
	return nil
}

func (f *fakeGalleryRepo) GetByID(ctx context.Context, id string) (*domain.GalleryImage, error) {
	if img, ok := f.byID[id]; ok {
		cp := *img
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGalleryRepo) Update(ctx context.Context, img *domain.GalleryImage) error {
	if _, ok := f.byID[img.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *img
	f.byID[img.ID] = &cp
	return nil
}

func (f *fakeGalleryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeGalleryRepo) List(ctx context.Context, activeOnly bool, category string) ([]*domain.GalleryImage, error) {
	out := make([]*domain.GalleryImage, 0, len(f.byID))
	for _, img := range f.byID {
		if activeOnly && !img.IsActive {
			continue
		}
		if category != "" && (img.Category == nil || *img.Category != category) {
			continue
		}
		cp := *img
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

type fakePostRepo struct {
	byID   map[string]*domain.Post
	nextID int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{byID: make(map[string]*domain.Post), nextID: 1}
}

func (f *fakePostRepo) Create(ctx context.Context, p *domain.Post) error {
	p.ID = fmt.Sprintf("post-%d", f.nextID)
	f.nextID++
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePostRepo) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	for _, p := range f.byID {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePostRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	for _, p := range f.byID {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePostRepo) Update(ctx context.Context, p *domain.Post) error {
	if _, ok := f.byID[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePostRepo) List(ctx context.Context, publishedOnly bool, page domain.PaginationParams) ([]*domain.Post, int, error) {
	all := make([]*domain.Post, 0, len(f.byID))
	for _, p := range f.byID {
		if publishedOnly && !p.Published {
			continue
		}
		cp := *p
		all = append(all, &cp)
	}
	sortKey := func(p *domain.Post) time.Time {
		if p.PublishedAt != nil {
			return *p.PublishedAt
		}
		return p.CreatedAt
	}
	sort.Slice(all, func(i, j int) bool { return sortKey(all[i]).After(sortKey(all[j])) })
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

type fakeSubscriptionRepo struct {
	byEmail map[string]*domain.Subscription
	nextID  int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{byEmail: make(map[string]*domain.Subscription), nextID: 1}
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, s *domain.Subscription) error {
	if existing, ok := f.byEmail[s.Email]; ok {
		if existing.IsActive {
			return domain.ErrAlreadySubscribed
		}
		existing.IsActive = true
		existing.Name = s.Name
		s.ID, s.CreatedAt = existing.ID, existing.CreatedAt
		return nil
	}
	s.ID = fmt.Sprintf("sub-%d", f.nextID)
	f.nextID++
	cp := *s
	f.byEmail[s.Email] = &cp
	return nil
}

func (f *fakeSubscriptionRepo) Deactivate(ctx context.Context, email string) error {
	s, ok := f.byEmail[email]
	if !ok || !s.IsActive {
		return domain.ErrNotFound
	}
	s.IsActive = false
	return nil
}

func (f *fakeSubscriptionRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Subscription, error) {
	out := make([]*domain.Subscription, 0, len(f.byEmail))
	for _, s := range f.byEmail {
		if activeOnly && !s.IsActive {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// fakeRenderer wraps markdown in a paragraph so tests can see it was rendered.
type fakeRenderer struct {
	err error
}

func (f fakeRenderer) Render(markdown string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "<p>" + markdown + "</p>\n", nil
}
