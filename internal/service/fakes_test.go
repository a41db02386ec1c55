package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"placeprep_backend/internal/model"
	"placeprep_backend/internal/questiongen"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUsers struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uint]*model.User{}}
}

func (f *fakeUsers) Create(u *model.User) error {
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) Update(u *model.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) TouchLogin(userID uint, at time.Time) error {
	if u, ok := f.users[userID]; ok {
		u.LastLogin = &at
		u.LastSeen = &at
	}
	return nil
}

type fakeScores struct {
	rows []model.QuizScore
}

func (f *fakeScores) add(s *model.QuizScore) {
	s.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *s)
}

func (f *fakeScores) filter(keep func(model.QuizScore) bool) []model.QuizScore {
	var out []model.QuizScore
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out
}

func (f *fakeScores) ListByUser(userID uint) ([]model.QuizScore, error) {
	return f.filter(func(s model.QuizScore) bool { return s.UserID == userID }), nil
}

func (f *fakeScores) ListByUserTopic(userID uint, topic string) ([]model.QuizScore, error) {
	return f.filter(func(s model.QuizScore) bool {
		return s.UserID == userID && strings.EqualFold(s.Topic, topic)
	}), nil
}

func (f *fakeScores) Page(userID uint, page, limit int) ([]model.QuizScore, int64, error) {
	all, _ := f.ListByUser(userID)
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

// fakeProgress 提交成功时把成绩写入 scores，completeErr 模拟事务失败
type fakeProgress struct {
	byUser      map[uint]*model.QuizProgress
	scores      *fakeScores
	completeErr error
}

func newFakeProgress(scores *fakeScores) *fakeProgress {
	return &fakeProgress{byUser: map[uint]*model.QuizProgress{}, scores: scores}
}

func (f *fakeProgress) Replace(p *model.QuizProgress) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	cp := *p
	f.byUser[p.UserID] = &cp
	return nil
}

func (f *fakeProgress) FindByUser(userID uint) (*model.QuizProgress, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProgress) SaveAnswers(p *model.QuizProgress) error {
	if cur, ok := f.byUser[p.UserID]; ok && cur.ID == p.ID {
		cur.Answers = p.Answers
	}
	return nil
}

func (f *fakeProgress) Delete(id string) error {
	for uid, p := range f.byUser {
		if p.ID == id {
			delete(f.byUser, uid)
		}
	}
	return nil
}

func (f *fakeProgress) Complete(id string, score *model.QuizScore) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	for uid, p := range f.byUser {
		if p.ID == id {
			delete(f.byUser, uid)
			f.scores.add(score)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeSource struct {
	result *questiongen.Result
	err    error
	last   questiongen.Request
}

func (f *fakeSource) Acquire(ctx context.Context, req questiongen.Request) (*questiongen.Result, error) {
	f.last = req
	return f.result, f.err
}

type publishedEvent struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{key: key, payload: payload})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fakeCertificates struct {
	rows   map[uint]*model.Certificate
	nextID uint
}

func newFakeCertificates() *fakeCertificates {
	return &fakeCertificates{rows: map[uint]*model.Certificate{}}
}

func (f *fakeCertificates) Create(c *model.Certificate) error {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCertificates) ListByUser(userID uint) ([]model.Certificate, error) {
	var out []model.Certificate
	for id := uint(1); id <= f.nextID; id++ {
		if c, ok := f.rows[id]; ok && c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCertificates) FindForUser(id, userID uint) (*model.Certificate, error) {
	c, ok := f.rows[id]
	if !ok || c.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCertificates) Delete(id uint) error {
	delete(f.rows, id)
	return nil
}

type fakeObjects struct {
	objects map[string][]byte
	types   map[string]string
	failOn  string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.failOn != "" && strings.HasSuffix(key, f.failOn) {
		return "", errors.New("upload failed")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	f.objects[key] = buf.Bytes()
	f.types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeResumes struct {
	byUser map[uint]*model.Resume
}

func (f *fakeResumes) FindByUser(userID uint) (*model.Resume, error) {
	r, ok := f.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResumes) Save(r *model.Resume) error {
	cp := *r
	f.byUser[r.UserID] = &cp
	return nil
}
