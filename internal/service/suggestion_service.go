package service

import (
	"fmt"
	"sort"

	"placeprep_backend/internal/catalog"
	"placeprep_backend/internal/difficulty"
	"placeprep_backend/internal/model"

	"github.com/samber/lo"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendSteady    Trend = "steady"
)

// 趋势计算参数：最近 3 次与之前的平均分比较，差值超过阈值才算变化
const (
	trendWindow    = 3
	trendThreshold = 5.0
)

type TopicSuggestion struct {
	Topic          string  `json:"topic"`
	Attempts       int     `json:"attempts"`
	Average        float64 `json:"average"`
	Trend          Trend   `json:"trend"`
	Difficulty     string  `json:"difficulty"`
	NextDifficulty string  `json:"nextDifficulty"`
	Tip            string  `json:"tip"`
}

type Suggestions struct {
	Topics      []TopicSuggestion `json:"topics"`
	Weak        []string          `json:"weak"`
	Strong      []string          `json:"strong"`
	Unattempted []string          `json:"unattempted"`
}

type SuggestionService struct {
	Scores  ScoreStore
	Users   UserStore
	Catalog *catalog.Catalog
}

func NewSuggestionService(scores ScoreStore, users UserStore, cat *catalog.Catalog) *SuggestionService {
	return &SuggestionService{Scores: scores, Users: users, Catalog: cat}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return lo.Sum(xs) / float64(len(xs))
}

// trendOf 输入按时间正序排列的百分比
func trendOf(pcts []float64) Trend {
	if len(pcts) <= trendWindow {
		return TrendSteady
	}
	split := len(pcts) - trendWindow
	delta := mean(pcts[split:]) - mean(pcts[:split])
	switch {
	case delta > trendThreshold:
		return TrendImproving
	case delta < -trendThreshold:
		return TrendDeclining
	default:
		return TrendSteady
	}
}

func tipFor(topic string, band difficulty.Band, trend Trend) string {
	var tip string
	switch band {
	case difficulty.Beginner:
		tip = fmt.Sprintf("Revise the fundamentals of %s and retake beginner quizzes until you clear 50%%.", topic)
	case difficulty.Intermediate:
		tip = fmt.Sprintf("You know the basics of %s. Practise mixed subtopics to push past 75%%.", topic)
	default:
		tip = fmt.Sprintf("Strong in %s. Keep it warm with timed advanced quizzes.", topic)
	}
	switch trend {
	case TrendDeclining:
		tip += " Recent scores are slipping, so review your last mistakes first."
	case TrendImproving:
		tip += " Your recent scores are improving."
	}
	return tip
}

// Analyze 基于规则分析成绩，scores 顺序不限
func Analyze(scores []model.QuizScore) []TopicSuggestion {
	groups := lo.GroupBy(scores, func(s model.QuizScore) string { return s.Topic })

	out := make([]TopicSuggestion, 0, len(groups))
	for topic, rows := range groups {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].TakenAt.Before(rows[j].TakenAt) })

		avg, _ := difficulty.AveragePercentage(records(rows))
		band := difficulty.ForPercentage(avg)
		trend := trendOf(lo.Map(rows, func(s model.QuizScore, _ int) float64 { return s.Percentage() }))

		next := band.Next()
		if trend == TrendDeclining {
			next = band
		}
		out = append(out, TopicSuggestion{
			Topic:          topic,
			Attempts:       len(rows),
			Average:        avg,
			Trend:          trend,
			Difficulty:     string(band),
			NextDifficulty: string(next),
			Tip:            tipFor(topic, band, trend),
		})
	}
	// 最弱的主题排在前面
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average < out[j].Average
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

func (s *SuggestionService) Get(userID uint) (*Suggestions, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	scores, err := s.Scores.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	topics := Analyze(scores)
	res := &Suggestions{
		Topics:      topics,
		Weak:        []string{},
		Strong:      []string{},
		Unattempted: []string{},
	}
	for _, t := range topics {
		switch {
		case t.Average < difficulty.IntermediateAt:
			res.Weak = append(res.Weak, t.Topic)
		case t.Average >= difficulty.AdvancedAt:
			res.Strong = append(res.Strong, t.Topic)
		}
	}

	attempted := lo.SliceToMap(topics, func(t TopicSuggestion) (string, struct{}) {
		return t.Topic, struct{}{}
	})
	for _, t := range s.Catalog.TopicsFor(user.Branch) {
		if _, ok := attempted[t.Name]; !ok {
			res.Unattempted = append(res.Unattempted, t.Name)
		}
	}
	return res, nil
}
