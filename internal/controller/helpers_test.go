package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"placeprep_backend/internal/model"
	"placeprep_backend/internal/questiongen"
	"placeprep_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// asUser 代替鉴权中间件写入 Claims，userID 为 0 时不写入
func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != 0 {
			c.Set(util.ContextUserKey, &util.Claims{UserID: userID, Role: model.Student})
		}
		c.Next()
	}
}

func newEngine(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asUser(userID))
	return r
}

func perform(r *gin.Engine, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) util.Response {
	t.Helper()
	var resp util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

type memScores struct {
	rows []model.QuizScore
	err  error
}

func (m *memScores) ListByUser(userID uint) ([]model.QuizScore, error) {
	return m.rows, m.err
}

func (m *memScores) ListByUserTopic(userID uint, topic string) ([]model.QuizScore, error) {
	return m.rows, m.err
}

func (m *memScores) Page(userID uint, page, limit int) ([]model.QuizScore, int64, error) {
	return m.rows, int64(len(m.rows)), m.err
}

type memProgress struct {
	byUser map[uint]*model.QuizProgress
	scores *memScores
}

func newMemProgress(scores *memScores) *memProgress {
	return &memProgress{byUser: map[uint]*model.QuizProgress{}, scores: scores}
}

func (m *memProgress) Replace(p *model.QuizProgress) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	cp := *p
	m.byUser[p.UserID] = &cp
	return nil
}

func (m *memProgress) FindByUser(userID uint) (*model.QuizProgress, error) {
	p, ok := m.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProgress) SaveAnswers(p *model.QuizProgress) error {
	if cur, ok := m.byUser[p.UserID]; ok {
		cur.Answers = p.Answers
	}
	return nil
}

func (m *memProgress) Delete(id string) error {
	for uid, p := range m.byUser {
		if p.ID == id {
			delete(m.byUser, uid)
		}
	}
	return nil
}

func (m *memProgress) Complete(id string, score *model.QuizScore) error {
	for uid, p := range m.byUser {
		if p.ID == id {
			delete(m.byUser, uid)
			m.scores.rows = append(m.scores.rows, *score)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type staticSource struct {
	result *questiongen.Result
}

func (s staticSource) Acquire(ctx context.Context, req questiongen.Request) (*questiongen.Result, error) {
	return s.result, nil
}
