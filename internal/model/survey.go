package model

import "time"

// SurveyStatus is the authoring lifecycle of a survey
type SurveyStatus string

const (
	SurveyDraft     SurveyStatus = "draft"
	SurveyPublished SurveyStatus = "published"
)

// SurveySettings configures respondent navigation
type SurveySettings struct {
	AllowBack        bool `json:"allowBack" bson:"allowBack" yaml:"allowBack"`
	AllowSkip        bool `json:"allowSkip" bson:"allowSkip" yaml:"allowSkip"`
	AllowEditAnswers bool `json:"allowEditAnswers" bson:"allowEditAnswers" yaml:"allowEditAnswers"`
	ShowProgress     bool `json:"showProgress" bson:"showProgress" yaml:"showProgress"`
}

// Survey is a persistent definition edited by an author
type Survey struct {
	ID          string         `json:"id" bson:"_id,omitempty" yaml:"id,omitempty"`
	AuthorID    string         `json:"authorId" bson:"authorId" yaml:"authorId,omitempty"`
	Name        string         `json:"name" bson:"name" yaml:"name"`
	Description string         `json:"description" bson:"description" yaml:"description,omitempty"`
	Settings    SurveySettings `json:"settings" bson:"settings" yaml:"settings"`
	Questions   []Question     `json:"questions" bson:"questions" yaml:"questions"`
	Status      SurveyStatus   `json:"status" bson:"status" yaml:"status,omitempty"`
	Version     int            `json:"version" bson:"version" yaml:"version,omitempty"` // Last published version, 0 if never published
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Question returns the question with the given id
func (s *Survey) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// PublishedSurvey is an immutable snapshot respondents run against
type PublishedSurvey struct {
	ID          string    `json:"id" bson:"_id"` // "<surveyId>:v<version>"
	SurveyID    string    `json:"surveyId" bson:"surveyId"`
	Version     int       `json:"version" bson:"version"`
	Survey      Survey    `json:"survey" bson:"survey"`
	PublishedAt time.Time `json:"publishedAt" bson:"publishedAt"`
}
