package service

import (
	"sort"
	"time"

	"placeprep_backend/internal/difficulty"
	"placeprep_backend/internal/model"

	"github.com/samber/lo"
)

const recentAttempts = 10

type DashboardService struct {
	Scores ScoreStore
}

func NewDashboardService(scores ScoreStore) *DashboardService {
	return &DashboardService{Scores: scores}
}

type TopicStat struct {
	Topic      string    `json:"topic"`
	Attempts   int       `json:"attempts"`
	Average    float64   `json:"average"`
	Best       float64   `json:"best"`
	LastTaken  time.Time `json:"lastTaken"`
	Difficulty string    `json:"difficulty"`
}

type Dashboard struct {
	Attempts          int               `json:"attempts"`
	QuestionsAnswered int               `json:"questionsAnswered"`
	Average           float64           `json:"average"`
	BestTopic         string            `json:"bestTopic,omitempty"`
	Topics            []TopicStat       `json:"topics"`
	Recent            []model.QuizScore `json:"recent"`
}

// topicStats 按主题聚合成绩，结果按最近作答时间倒序
func topicStats(scores []model.QuizScore) []TopicStat {
	groups := lo.GroupBy(scores, func(s model.QuizScore) string { return s.Topic })

	stats := make([]TopicStat, 0, len(groups))
	for topic, rows := range groups {
		pcts := lo.Map(rows, func(s model.QuizScore, _ int) float64 { return s.Percentage() })
		avg, _ := difficulty.AveragePercentage(records(rows))
		last := lo.MaxBy(rows, func(a, b model.QuizScore) bool { return a.TakenAt.After(b.TakenAt) })
		stats = append(stats, TopicStat{
			Topic:      topic,
			Attempts:   len(rows),
			Average:    avg,
			Best:       lo.Max(pcts),
			LastTaken:  last.TakenAt,
			Difficulty: string(difficulty.ForPercentage(avg)),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].LastTaken.Equal(stats[j].LastTaken) {
			return stats[i].LastTaken.After(stats[j].LastTaken)
		}
		return stats[i].Topic < stats[j].Topic
	})
	return stats
}

func (s *DashboardService) Get(userID uint) (*Dashboard, error) {
	scores, err := s.Scores.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Attempts: len(scores),
		Topics:   topicStats(scores),
		Recent:   lo.Slice(scores, 0, recentAttempts),
	}
	d.QuestionsAnswered = lo.SumBy(scores, func(s model.QuizScore) int { return s.Total })
	d.Average, _ = difficulty.AveragePercentage(records(scores))

	if len(d.Topics) > 0 {
		best := lo.MaxBy(d.Topics, func(a, b TopicStat) bool {
			if a.Average != b.Average {
				return a.Average > b.Average
			}
			return a.Topic < b.Topic
		})
		d.BestTopic = best.Topic
	}
	if d.Recent == nil {
		d.Recent = []model.QuizScore{}
	}
	return d, nil
}

// sortByAverage 平均分从高到低
func sortByAverage(stats []TopicStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Average != stats[j].Average {
			return stats[i].Average > stats[j].Average
		}
		return stats[i].Topic < stats[j].Topic
	})
}
