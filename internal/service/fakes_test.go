package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

type fakeUserRepo struct {
	users  map[uint]domain.User
	nextID uint

	// revokedTutors lists users whose tutor data went with a role change.
	revokedTutors []uint
	setRolesErr   error
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint]domain.User{}, nextID: 1}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}

	return r
}

func rolesFor(names []string) []domain.Role {
	roles := make([]domain.Role, 0, len(names))
	for i, n := range names {
		roles = append(roles, domain.Role{ID: uint(i + 1), Name: n})
	}

	return roles
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User, roleNames []string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.Roles = rolesFor(roleNames)
	r.users[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return u, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (r *fakeUserRepo) UpdatePhone(_ context.Context, id uint, phone string) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	u.Phone = phone
	r.users[id] = u

	return u, nil
}

func (r *fakeUserRepo) SetRoles(_ context.Context, id uint, roleNames []string, revokeTutor bool) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	if r.setRolesErr != nil {
		return domain.User{}, r.setRolesErr
	}
	u.Roles = rolesFor(roleNames)
	r.users[id] = u
	if revokeTutor {
		r.revokedTutors = append(r.revokedTutors, id)
	}

	return u, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)

	return nil
}

type fakeRevoker struct {
	revoked []uint
}

func (r *fakeRevoker) RevokeTutor(_ context.Context, tutorID uint) error {
	r.revoked = append(r.revoked, tutorID)
	return nil
}

type fakeSubjectRepo struct {
	subjects map[uint]domain.Subject
	links    map[uint]domain.TutorSubject
	nextID   uint
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{
		subjects: map[uint]domain.Subject{},
		links:    map[uint]domain.TutorSubject{},
		nextID:   1,
	}
}

func (r *fakeSubjectRepo) link(id, tutorID, subjectID uint) {
	r.links[id] = domain.TutorSubject{ID: id, TutorID: tutorID, SubjectID: subjectID}
}

func (r *fakeSubjectRepo) Create(_ context.Context, s domain.Subject) (domain.Subject, error) {
	s.ID = r.nextID
	r.nextID++
	r.subjects[s.ID] = s

	return s, nil
}

func (r *fakeSubjectRepo) Update(_ context.Context, s domain.Subject) (domain.Subject, error) {
	if _, ok := r.subjects[s.ID]; !ok {
		return domain.Subject{}, repository.ErrSubjectNotFound
	}
	r.subjects[s.ID] = s

	return s, nil
}

func (r *fakeSubjectRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.subjects[id]; !ok {
		return repository.ErrSubjectNotFound
	}
	delete(r.subjects, id)

	return nil
}

func (r *fakeSubjectRepo) FindByID(_ context.Context, id uint) (domain.Subject, error) {
	s, ok := r.subjects[id]
	if !ok {
		return domain.Subject{}, repository.ErrSubjectNotFound
	}

	return s, nil
}

func (r *fakeSubjectRepo) FindByCode(_ context.Context, code string) (domain.Subject, error) {
	for _, s := range r.subjects {
		if s.Code == code {
			return s, nil
		}
	}

	return domain.Subject{}, repository.ErrSubjectNotFound
}

func (r *fakeSubjectRepo) FindAll(_ context.Context) ([]domain.Subject, error) {
	subjects := make([]domain.Subject, 0, len(r.subjects))
	for _, s := range r.subjects {
		subjects = append(subjects, s)
	}

	return subjects, nil
}

func (r *fakeSubjectRepo) FindTutorSubjects(_ context.Context, tutorID uint) ([]domain.TutorSubject, error) {
	var links []domain.TutorSubject
	for _, l := range r.links {
		if l.TutorID == tutorID {
			links = append(links, l)
		}
	}

	return links, nil
}

func (r *fakeSubjectRepo) FindTutorSubjectByID(_ context.Context, id uint) (domain.TutorSubject, error) {
	l, ok := r.links[id]
	if !ok {
		return domain.TutorSubject{}, repository.ErrTutorSubjectNone
	}

	return l, nil
}

func (r *fakeSubjectRepo) CountTutorSubjects(ctx context.Context, tutorID uint) (int, error) {
	links, _ := r.FindTutorSubjects(ctx, tutorID)
	return len(links), nil
}

func (r *fakeSubjectRepo) IsTutorOf(_ context.Context, tutorID, subjectID uint) (bool, error) {
	for _, l := range r.links {
		if l.TutorID == tutorID && l.SubjectID == subjectID {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeSubjectRepo) DeleteTutorSubject(_ context.Context, id uint) error {
	if _, ok := r.links[id]; !ok {
		return repository.ErrTutorSubjectNone
	}
	delete(r.links, id)

	return nil
}

type fakeTutorRequestRepo struct {
	requests map[uint]domain.TutorRequest
	nextID   uint
	granted  []string
}

func newFakeTutorRequestRepo() *fakeTutorRequestRepo {
	return &fakeTutorRequestRepo{requests: map[uint]domain.TutorRequest{}, nextID: 1}
}

func (r *fakeTutorRequestRepo) Create(_ context.Context, req domain.TutorRequest) (domain.TutorRequest, error) {
	req.ID = r.nextID
	r.nextID++
	r.requests[req.ID] = req

	return req, nil
}

func (r *fakeTutorRequestRepo) FindByID(_ context.Context, id uint) (domain.TutorRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return domain.TutorRequest{}, repository.ErrTutorRequestNotFound
	}

	return req, nil
}

func (r *fakeTutorRequestRepo) FindByApplicant(_ context.Context, applicantID uint) ([]domain.TutorRequest, error) {
	var out []domain.TutorRequest
	for _, req := range r.requests {
		if req.Applicant.ID == applicantID {
			out = append(out, req)
		}
	}

	return out, nil
}

func (r *fakeTutorRequestRepo) FindByStatus(_ context.Context, statuses ...domain.RequestStatus) ([]domain.TutorRequest, error) {
	var out []domain.TutorRequest
	for _, req := range r.requests {
		for _, st := range statuses {
			if req.Status == st {
				out = append(out, req)
			}
		}
	}

	return out, nil
}

func (r *fakeTutorRequestRepo) HasActive(_ context.Context, applicantID, subjectID uint, statuses ...domain.RequestStatus) (bool, error) {
	for _, req := range r.requests {
		if req.Applicant.ID != applicantID || req.Subject.ID != subjectID {
			continue
		}
		for _, st := range statuses {
			if req.Status == st {
				return true, nil
			}
		}
	}

	return false, nil
}

func (r *fakeTutorRequestRepo) Review(_ context.Context, id uint, from, to domain.RequestStatus, observation, grantRole string) (domain.TutorRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return domain.TutorRequest{}, repository.ErrTutorRequestNotFound
	}
	if req.Status != from {
		return domain.TutorRequest{}, repository.ErrTutorRequestReviewed
	}
	req.Status = to
	req.Observation = observation
	r.requests[id] = req
	if grantRole != "" {
		r.granted = append(r.granted, grantRole)
	}

	return req, nil
}

type fakeFileStore struct {
	saved map[string][]byte
	n     int
}

func (f *fakeFileStore) Save(originalName string, r io.Reader) (string, error) {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	f.n++
	name := fmt.Sprintf("%d-%s", f.n, originalName)
	f.saved[name] = buf.Bytes()

	return name, nil
}

func (f *fakeFileStore) Path(name string) (string, error) {
	if _, ok := f.saved[name]; !ok {
		return "", ErrFileNotFound
	}

	return "/uploads/" + name, nil
}

type fakeAvailabilityRepo struct {
	weekly  map[uint][]domain.WeeklyBlock
	blocks  map[uint]domain.MonthlyBlock
	nextID  uint
	replErr error
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{
		weekly: map[uint][]domain.WeeklyBlock{},
		blocks: map[uint]domain.MonthlyBlock{},
		nextID: 1,
	}
}

func (r *fakeAvailabilityRepo) ReplaceWeekly(_ context.Context, tutorID uint, blocks []domain.WeeklyBlock) ([]domain.WeeklyBlock, error) {
	saved := make([]domain.WeeklyBlock, 0, len(blocks))
	for i, b := range blocks {
		b.ID = uint(i + 1)
		b.TutorID = tutorID
		saved = append(saved, b)
	}
	r.weekly[tutorID] = saved

	return append([]domain.WeeklyBlock(nil), saved...), nil
}

func (r *fakeAvailabilityRepo) FindWeekly(_ context.Context, tutorID uint) ([]domain.WeeklyBlock, error) {
	return append([]domain.WeeklyBlock(nil), r.weekly[tutorID]...), nil
}

func (r *fakeAvailabilityRepo) ReplaceMonth(_ context.Context, tutorID uint, from, to domain.Date, blocks []domain.MonthlyBlock) (int, error) {
	if r.replErr != nil {
		return 0, r.replErr
	}
	for _, b := range r.blocks {
		if b.TutorID == tutorID && inRange(b.Date, from, to) && b.Status.Locked() {
			return 0, repository.ErrMonthHasBookings
		}
	}
	for id, b := range r.blocks {
		if b.TutorID == tutorID && inRange(b.Date, from, to) {
			delete(r.blocks, id)
		}
	}
	for _, b := range blocks {
		for _, kept := range r.blocks {
			if kept.TutorID == b.TutorID && kept.Date == b.Date && kept.Start == b.Start {
				return 0, repository.ErrBlockExists
			}
		}
		b.ID = r.nextID
		r.nextID++
		r.blocks[b.ID] = b
	}

	return len(blocks), nil
}

// inRange matches the dao's half-open month range.
func inRange(d, from, to domain.Date) bool {
	return !d.Before(from) && d.Before(to)
}

func (r *fakeAvailabilityRepo) FindMonthly(_ context.Context, tutorID uint, from, to domain.Date) ([]domain.MonthlyBlock, error) {
	var out []domain.MonthlyBlock
	for _, b := range r.blocks {
		if b.TutorID == tutorID && inRange(b.Date, from, to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *fakeAvailabilityRepo) FindBlockByID(_ context.Context, id uint) (domain.MonthlyBlock, error) {
	b, ok := r.blocks[id]
	if !ok {
		return domain.MonthlyBlock{}, repository.ErrBlockNotFound
	}

	return b, nil
}

func (r *fakeAvailabilityRepo) DeleteBlock(_ context.Context, id uint) error {
	delete(r.blocks, id)
	return nil
}

func (r *fakeAvailabilityRepo) UpdateModality(_ context.Context, id uint, modality domain.Modality) (domain.MonthlyBlock, error) {
	b := r.blocks[id]
	b.Modality = modality
	r.blocks[id] = b

	return b, nil
}

func (r *fakeAvailabilityRepo) FindAvailableBySubject(_ context.Context, _ uint, from, to domain.Date) ([]domain.MonthlyBlock, error) {
	var out []domain.MonthlyBlock
	for _, b := range r.blocks {
		if b.Status == domain.BlockAvailable && !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}

	return out, nil
}

type fakeTutoringRepo struct {
	sessions    map[uint]domain.TutoringSession
	blocks      *fakeAvailabilityRepo
	nextID      uint
	transitions int
}

func newFakeTutoringRepo(blocks *fakeAvailabilityRepo) *fakeTutoringRepo {
	return &fakeTutoringRepo{sessions: map[uint]domain.TutoringSession{}, blocks: blocks, nextID: 1}
}

func (r *fakeTutoringRepo) Reserve(_ context.Context, s domain.TutoringSession) (domain.TutoringSession, error) {
	block := r.blocks.blocks[s.BlockID]
	if block.Status != domain.BlockAvailable {
		return domain.TutoringSession{}, repository.ErrBlockNotAvailable
	}
	for _, other := range r.sessions {
		if other.StudentID == s.StudentID && other.Status != domain.SessionCancelled &&
			other.Date == block.Date && other.Start == block.Start {
			return domain.TutoringSession{}, repository.ErrScheduleConflict
		}
	}
	block.Status = domain.BlockReserved
	r.blocks.blocks[block.ID] = block

	s.ID = r.nextID
	r.nextID++
	s.TutorID = block.TutorID
	s.Date, s.Start, s.End, s.Modality = block.Date, block.Start, block.End, block.Modality
	s.Status = domain.SessionReserved
	r.sessions[s.ID] = s

	return s, nil
}

func (r *fakeTutoringRepo) FindByID(_ context.Context, id uint) (domain.TutoringSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return domain.TutoringSession{}, repository.ErrSessionNotFound
	}

	return s, nil
}

func (r *fakeTutoringRepo) filter(match func(domain.TutoringSession) bool, statuses []domain.SessionStatus) []domain.TutoringSession {
	var out []domain.TutoringSession
	for _, s := range r.sessions {
		if !match(s) {
			continue
		}
		if len(statuses) > 0 {
			found := false
			for _, st := range statuses {
				found = found || s.Status == st
			}
			if !found {
				continue
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (r *fakeTutoringRepo) FindByStudent(_ context.Context, studentID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error) {
	return r.filter(func(s domain.TutoringSession) bool { return s.StudentID == studentID }, statuses), nil
}

func (r *fakeTutoringRepo) FindByTutor(_ context.Context, tutorID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error) {
	return r.filter(func(s domain.TutoringSession) bool { return s.TutorID == tutorID }, statuses), nil
}

func (r *fakeTutoringRepo) FindByStatusUntil(_ context.Context, status domain.SessionStatus, day domain.Date) ([]domain.TutoringSession, error) {
	return r.filter(func(s domain.TutoringSession) bool { return !s.Date.After(day) }, []domain.SessionStatus{status}), nil
}

func (r *fakeTutoringRepo) SetLink(ctx context.Context, id uint, link string) (domain.TutoringSession, error) {
	s, err := r.Transition(ctx, id, []domain.SessionStatus{domain.SessionReserved}, domain.SessionScheduled, "")
	if err != nil {
		return s, err
	}
	s.Link = link
	r.sessions[id] = s

	return s, nil
}

func (r *fakeTutoringRepo) Transition(_ context.Context, id uint, from []domain.SessionStatus, to domain.SessionStatus, blockStatus domain.BlockStatus) (domain.TutoringSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return domain.TutoringSession{}, repository.ErrSessionNotFound
	}
	allowed := false
	for _, st := range from {
		allowed = allowed || s.Status == st
	}
	if !allowed {
		return domain.TutoringSession{}, repository.ErrSessionStateChanged
	}
	s.Status = to
	r.sessions[id] = s
	r.transitions++
	if blockStatus != "" {
		b := r.blocks.blocks[s.BlockID]
		b.Status = blockStatus
		r.blocks.blocks[s.BlockID] = b
	}

	return s, nil
}

func (r *fakeTutoringRepo) Cancel(ctx context.Context, id, _ uint, reason string, from []domain.SessionStatus) (domain.TutoringSession, error) {
	s, err := r.Transition(ctx, id, from, domain.SessionCancelled, domain.BlockAvailable)
	if err != nil {
		return s, err
	}
	s.Observations = reason
	r.sessions[id] = s

	return s, nil
}

func (r *fakeTutoringRepo) Confirm(_ context.Context, id uint, asStudent bool, at time.Time, from []domain.SessionStatus) (domain.TutoringSession, error) {
	s := r.sessions[id]
	if asStudent {
		s.StudentConfirmed, s.StudentConfirmedAt = true, &at
	} else {
		s.TutorConfirmed, s.TutorConfirmedAt = true, &at
	}
	r.sessions[id] = s
	if s.StudentConfirmed && s.TutorConfirmed {
		return r.Transition(context.Background(), id, from, domain.SessionHeld, domain.BlockOccupied)
	}

	return s, nil
}

type fakeNotifier struct {
	events []domain.SessionEvent
}

func (n *fakeNotifier) Publish(e domain.SessionEvent) {
	n.events = append(n.events, e)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
