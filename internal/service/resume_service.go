package service

import (
	"bytes"
	"strings"
	"text/template"

	"placeprep_backend/internal/model"

	"gorm.io/datatypes"
)

// ResumeStore 简历持久化接口
type ResumeStore interface {
	FindByUser(userID uint) (*model.Resume, error)
	Save(resume *model.Resume) error
}

// CertificateStore 证书元数据持久化接口
type CertificateStore interface {
	Create(c *model.Certificate) error
	ListByUser(userID uint) ([]model.Certificate, error)
	FindForUser(id, userID uint) (*model.Certificate, error)
	Delete(id uint) error
}

// 简历中列出的最佳测验主题数量
const resumeTopTopics = 3

type ResumeService struct {
	Resumes      ResumeStore
	Certificates CertificateStore
	Scores       ScoreStore
	Users        UserStore
}

func NewResumeService(resumes ResumeStore, certs CertificateStore, scores ScoreStore, users UserStore) *ResumeService {
	return &ResumeService{Resumes: resumes, Certificates: certs, Scores: scores, Users: users}
}

type ResumeInput struct {
	Headline   string                  `json:"headline"`
	Phone      string                  `json:"phone"`
	Summary    string                  `json:"summary"`
	Education  []model.EducationEntry  `json:"education"`
	Skills     []string                `json:"skills"`
	Projects   []model.ProjectEntry    `json:"projects"`
	Experience []model.ExperienceEntry `json:"experience"`
	Links      []model.ResumeLink      `json:"links"`
}

// Get 没有保存过简历时返回空简历
func (s *ResumeService) Get(userID uint) (*model.Resume, error) {
	r, err := s.Resumes.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = &model.Resume{UserID: userID}
	}
	return r, nil
}

func (s *ResumeService) Save(userID uint, in ResumeInput) (*model.Resume, error) {
	skills := make([]string, 0, len(in.Skills))
	for _, sk := range in.Skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}

	r := &model.Resume{
		UserID:     userID,
		Headline:   strings.TrimSpace(in.Headline),
		Phone:      strings.TrimSpace(in.Phone),
		Summary:    strings.TrimSpace(in.Summary),
		Education:  datatypes.NewJSONType(in.Education),
		Skills:     datatypes.NewJSONType(skills),
		Projects:   datatypes.NewJSONType(in.Projects),
		Experience: datatypes.NewJSONType(in.Experience),
		Links:      datatypes.NewJSONType(in.Links),
	}
	if err := s.Resumes.Save(r); err != nil {
		return nil, err
	}
	return r, nil
}

var resumeTemplate = template.Must(template.New("resume").Funcs(template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
	"pct":   func(f float64) int { return int(f + 0.5) },
}).Parse(`{{upper .User.Name}}
{{with .Resume.Headline}}{{.}}
{{end}}{{.User.Email}}{{with .Resume.Phone}} | {{.}}{{end}}
{{.User.Branch}}{{with .User.College}}, {{.}}{{end}}{{if .User.GraduationYear}} ({{.User.GraduationYear}}){{end}}
{{with .Resume.Summary}}
SUMMARY
{{.}}
{{end}}{{with .Education}}
EDUCATION
{{range .}}- {{.Degree}}, {{.Institution}} {{.Year}}{{with .Score}} [{{.}}]{{end}}
{{end}}{{end}}{{with .Skills}}
SKILLS
{{join . ", "}}
{{end}}{{with .Projects}}
PROJECTS
{{range .}}- {{.Name}}: {{.Description}}{{with .Tech}} ({{join . ", "}}){{end}}{{with .Link}} {{.}}{{end}}
{{end}}{{end}}{{with .Experience}}
EXPERIENCE
{{range .}}- {{.Role}} at {{.Company}}, {{.Duration}}{{with .Summary}}: {{.}}{{end}}
{{end}}{{end}}{{with .Certificates}}
CERTIFICATIONS
{{range .}}- {{.Title}}
{{end}}{{end}}{{with .TopTopics}}
PLACEMENT PRACTICE
{{range .}}- {{.Topic}}: {{pct .Average}}% average over {{.Attempts}} quizzes ({{.Difficulty}})
{{end}}{{end}}{{with .Links}}
LINKS
{{range .}}- {{.Label}}: {{.URL}}
{{end}}{{end}}`))

type resumeData struct {
	User         *model.User
	Resume       *model.Resume
	Education    []model.EducationEntry
	Skills       []string
	Projects     []model.ProjectEntry
	Experience   []model.ExperienceEntry
	Links        []model.ResumeLink
	Certificates []model.Certificate
	TopTopics    []TopicStat
}

// Render 生成纯文本简历，附带证书与成绩最好的主题
func (s *ResumeService) Render(userID uint) ([]byte, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	r, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	certs, err := s.Certificates.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	scores, err := s.Scores.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := topicStats(scores)
	sortByAverage(stats)
	if len(stats) > resumeTopTopics {
		stats = stats[:resumeTopTopics]
	}

	data := resumeData{
		User:         user,
		Resume:       r,
		Education:    r.Education.Data(),
		Skills:       r.Skills.Data(),
		Projects:     r.Projects.Data(),
		Experience:   r.Experience.Data(),
		Links:        r.Links.Data(),
		Certificates: certs,
		TopTopics:    stats,
	}

	var buf bytes.Buffer
	if err := resumeTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
