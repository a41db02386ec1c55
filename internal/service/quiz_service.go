package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"placeprep_backend/internal/catalog"
	"placeprep_backend/internal/difficulty"
	"placeprep_backend/internal/model"
	"placeprep_backend/internal/question"
	"placeprep_backend/internal/questiongen"
	"placeprep_backend/internal/util"
	"placeprep_backend/pkg/events"
	"placeprep_backend/pkg/logger"
	"placeprep_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoreStore 成绩持久化接口
type ScoreStore interface {
	ListByUser(userID uint) ([]model.QuizScore, error)
	ListByUserTopic(userID uint, topic string) ([]model.QuizScore, error)
	Page(userID uint, page, limit int) ([]model.QuizScore, int64, error)
}

// ProgressStore 测验快照持久化接口
type ProgressStore interface {
	Replace(p *model.QuizProgress) error
	FindByUser(userID uint) (*model.QuizProgress, error)
	SaveAnswers(p *model.QuizProgress) error
	Delete(id string) error
	// Complete 原子地删除快照并保存成绩，快照不存在时返回 gorm.ErrRecordNotFound
	Complete(id string, score *model.QuizScore) error
}

// QuestionSource 出题来源，由 questiongen.Acquirer 实现
type QuestionSource interface {
	Acquire(ctx context.Context, req questiongen.Request) (*questiongen.Result, error)
}

type QuizService struct {
	Scores    ScoreStore
	Progress  ProgressStore
	Questions QuestionSource
	Catalog   *catalog.Catalog
	Events    events.Publisher
	TTL       time.Duration

	now func() time.Time
}

func NewQuizService(scores ScoreStore, progress ProgressStore, questions QuestionSource, cat *catalog.Catalog, pub events.Publisher, ttl time.Duration) *QuizService {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &QuizService{
		Scores:    scores,
		Progress:  progress,
		Questions: questions,
		Catalog:   cat,
		Events:    pub,
		TTL:       ttl,
		now:       time.Now,
	}
}

// QuizView 返回给前端的进行中测验，不含答案
type QuizView struct {
	ID         string            `json:"id"`
	Topic      string            `json:"topic"`
	Subtopic   string            `json:"subtopic"`
	Difficulty string            `json:"difficulty"`
	Source     string            `json:"source"`
	Questions  []question.Public `json:"questions"`
	Answers    []string          `json:"answers"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

type ReviewItem struct {
	Index       int      `json:"index"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Selected    string   `json:"selected"`
	Answer      string   `json:"answer"`
	Correct     bool     `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

type QuizResult struct {
	Score      *model.QuizScore `json:"score"`
	Percentage float64          `json:"percentage"`
	Review     []ReviewItem     `json:"review"`
}

type DifficultyInfo struct {
	Topic      string  `json:"topic"`
	Difficulty string  `json:"difficulty"`
	Attempts   int     `json:"attempts"`
	Average    float64 `json:"average"`
}

func view(p *model.QuizProgress) *QuizView {
	answers := p.Answers.Data()
	if answers == nil {
		answers = []string{}
	}
	return &QuizView{
		ID:         p.ID,
		Topic:      p.Topic,
		Subtopic:   p.Subtopic,
		Difficulty: p.Difficulty,
		Source:     p.Source,
		Questions:  question.PublicSet(p.Questions.Data()),
		Answers:    answers,
		ExpiresAt:  p.ExpiresAt,
	}
}

func records(scores []model.QuizScore) []difficulty.Record {
	out := make([]difficulty.Record, len(scores))
	for i, s := range scores {
		out[i] = difficulty.Record{Score: s.Score, Total: s.Total}
	}
	return out
}

// resolveTopic 校验主题与子主题并返回规范写法，子主题可以为空
func (s *QuizService) resolveTopic(topic, subtopic string) (string, string, error) {
	t, ok := s.Catalog.Lookup(topic)
	if !ok {
		return "", "", util.ErrUnknownTopic
	}
	if strings.TrimSpace(subtopic) == "" {
		return t.Name, "", nil
	}
	sub, ok := s.Catalog.CanonicalSubtopic(t.Name, subtopic)
	if !ok {
		return "", "", util.ErrUnknownSubtopic
	}
	return t.Name, sub, nil
}

// Difficulty 根据用户在该主题上的历史成绩给出难度
func (s *QuizService) Difficulty(userID uint, topic string) (*DifficultyInfo, error) {
	name, _, err := s.resolveTopic(topic, "")
	if err != nil {
		return nil, err
	}
	scores, err := s.Scores.ListByUserTopic(userID, name)
	if err != nil {
		return nil, err
	}
	recs := records(scores)
	avg, _ := difficulty.AveragePercentage(recs)
	return &DifficultyInfo{
		Topic:      name,
		Difficulty: string(difficulty.Select(recs)),
		Attempts:   len(scores),
		Average:    avg,
	}, nil
}

// Start 出题并保存快照，会替换用户已有的进行中测验
func (s *QuizService) Start(ctx context.Context, userID uint, topic, subtopic string, count int) (*QuizView, error) {
	info, err := s.Difficulty(userID, topic)
	if err != nil {
		return nil, err
	}
	_, sub, err := s.resolveTopic(info.Topic, subtopic)
	if err != nil {
		return nil, err
	}

	res, err := s.Questions.Acquire(ctx, questiongen.Request{
		Topic:      info.Topic,
		Subtopic:   sub,
		Difficulty: difficulty.Band(info.Difficulty),
		Count:      count,
	})
	if err != nil {
		return nil, fmt.Errorf("acquire questions: %w", err)
	}

	now := s.now()
	p := &model.QuizProgress{
		UserID:     userID,
		Topic:      info.Topic,
		Subtopic:   sub,
		Difficulty: info.Difficulty,
		Source:     string(res.Source),
		Attempts:   res.Attempts,
		Questions:  datatypes.NewJSONType(res.Questions),
		Answers:    datatypes.NewJSONType([]string{}),
		ExpiresAt:  now.Add(s.TTL),
	}
	if err := s.Progress.Replace(p); err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz started",
		zap.Uint("userID", userID),
		zap.String("quizID", p.ID),
		zap.String("topic", p.Topic),
		zap.String("difficulty", p.Difficulty),
		zap.String("source", p.Source),
		zap.Int("questions", len(res.Questions)))
	return view(p), nil
}

// load 读取进行中的测验，id 为空时不校验；过期快照会被删除
func (s *QuizService) load(userID uint, id string) (*model.QuizProgress, error) {
	p, err := s.Progress.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if p == nil || (id != "" && p.ID != id) {
		return nil, util.ErrQuizNotFound
	}
	if p.Expired(s.now()) {
		if err := s.Progress.Delete(p.ID); err != nil {
			logger.Log.Warn("Failed to delete expired quiz", zap.String("quizID", p.ID), zap.Error(err))
		}
		return nil, util.ErrQuizExpired
	}
	return p, nil
}

func (s *QuizService) Active(userID uint) (*QuizView, error) {
	p, err := s.load(userID, "")
	if err != nil {
		return nil, err
	}
	return view(p), nil
}

func (s *QuizService) SaveProgress(userID uint, id string, answers []string) (*QuizView, error) {
	p, err := s.load(userID, id)
	if err != nil {
		return nil, err
	}
	if len(answers) > len(p.Questions.Data()) {
		return nil, util.ErrAnswerCount
	}
	p.Answers = datatypes.NewJSONType(answers)
	if err := s.Progress.SaveAnswers(p); err != nil {
		return nil, err
	}
	return view(p), nil
}

func (s *QuizService) Abandon(userID uint, id string) error {
	p, err := s.Progress.FindByUser(userID)
	if err != nil {
		return err
	}
	if p == nil || p.ID != id {
		return util.ErrQuizNotFound
	}
	return s.Progress.Delete(p.ID)
}

// Submit 判分，并在同一事务中保存成绩、删除快照。answers 为空时使用已保存的作答
func (s *QuizService) Submit(ctx context.Context, userID uint, id string, answers []string) (*QuizResult, error) {
	p, err := s.load(userID, id)
	if err != nil {
		return nil, err
	}

	qs := p.Questions.Data()
	if answers == nil {
		answers = p.Answers.Data()
	}
	if len(answers) > len(qs) {
		return nil, util.ErrAnswerCount
	}

	review := make([]ReviewItem, len(qs))
	correct := 0
	for i := range qs {
		selected := ""
		if i < len(answers) {
			selected = answers[i]
		}
		ok := qs[i].IsCorrect(selected)
		if ok {
			correct++
		}
		review[i] = ReviewItem{
			Index:       i,
			Question:    qs[i].Text,
			Options:     qs[i].Options,
			Selected:    selected,
			Answer:      qs[i].Answer,
			Correct:     ok,
			Explanation: qs[i].Explanation,
		}
	}

	score := &model.QuizScore{
		UserID:     userID,
		Topic:      p.Topic,
		Subtopic:   p.Subtopic,
		Difficulty: p.Difficulty,
		Source:     p.Source,
		Score:      correct,
		Total:      len(qs),
		TakenAt:    s.now(),
	}
	if err := s.Progress.Complete(p.ID, score); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	monitoring.QuizSubmissions.WithLabelValues(p.Difficulty).Inc()
	if err := s.Events.Publish(ctx, events.QuizCompleted, events.QuizCompletedEvent{
		UserID:     userID,
		QuizID:     p.ID,
		Topic:      score.Topic,
		Subtopic:   score.Subtopic,
		Difficulty: score.Difficulty,
		Source:     score.Source,
		Score:      score.Score,
		Total:      score.Total,
		TakenAt:    score.TakenAt,
	}); err != nil {
		logger.Log.Warn("Failed to publish quiz event", zap.String("quizID", p.ID), zap.Error(err))
	}

	return &QuizResult{Score: score, Percentage: score.Percentage(), Review: review}, nil
}

// ScoreHistory 分页返回成绩历史
func (s *QuizService) ScoreHistory(userID uint, page, limit int) ([]model.QuizScore, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Scores.Page(userID, page, limit)
}
