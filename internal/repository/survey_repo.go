package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

// ErrVersionExists is returned when a snapshot with the same version was already published
var ErrVersionExists = errors.New("survey version already published")

// SurveyRepo handles MongoDB operations for survey drafts and their published snapshots
type SurveyRepo interface {
	Create(ctx context.Context, survey *model.Survey) (string, error)
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	GetByAuthorID(ctx context.Context, authorID string) ([]*model.Survey, error)
	Update(ctx context.Context, survey *model.Survey) error
	Delete(ctx context.Context, id string) error

	PublishVersion(ctx context.Context, published *model.PublishedSurvey) error
	GetPublished(ctx context.Context, surveyID string, version int) (*model.PublishedSurvey, error)
	GetLatestPublished(ctx context.Context, surveyID string) (*model.PublishedSurvey, error)

	EnsureIndexes(ctx context.Context) error
}

type surveyRepo struct {
	collection *mongo.Collection
	versions   *mongo.Collection
}

// NewSurveyRepo creates a new survey repository
func NewSurveyRepo(db *mongo.Database) SurveyRepo {
	return &surveyRepo{
		collection: db.Collection("surveys"),
		versions:   db.Collection("survey_versions"),
	}
}

// Create stores a new draft. Ids are ObjectID hex strings unless the caller set one.
func (r *surveyRepo) Create(ctx context.Context, survey *model.Survey) (string, error) {
	if survey.ID == "" {
		survey.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	survey.CreatedAt = now
	survey.UpdatedAt = now
	if survey.Status == "" {
		survey.Status = model.SurveyDraft
	}

	if _, err := r.collection.InsertOne(ctx, survey); err != nil {
		return "", err
	}
	return survey.ID, nil
}

func (r *surveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	var survey model.Survey
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&survey)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *surveyRepo) GetByAuthorID(ctx context.Context, authorID string) ([]*model.Survey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"authorId": authorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := []*model.Survey{}
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}

func (r *surveyRepo) Update(ctx context.Context, survey *model.Survey) error {
	survey.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": survey.ID}, survey)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the draft. Published snapshots are kept so completed
// responses still resolve their question labels.
func (r *surveyRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *surveyRepo) PublishVersion(ctx context.Context, published *model.PublishedSurvey) error {
	published.ID = fmt.Sprintf("%s:v%d", published.SurveyID, published.Version)
	if published.PublishedAt.IsZero() {
		published.PublishedAt = time.Now()
	}
	_, err := r.versions.InsertOne(ctx, published)
	if mongo.IsDuplicateKeyError(err) {
		return ErrVersionExists
	}
	return err
}

func (r *surveyRepo) GetPublished(ctx context.Context, surveyID string, version int) (*model.PublishedSurvey, error) {
	var published model.PublishedSurvey
	err := r.versions.FindOne(ctx, bson.M{"surveyId": surveyID, "version": version}).Decode(&published)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &published, nil
}

func (r *surveyRepo) GetLatestPublished(ctx context.Context, surveyID string) (*model.PublishedSurvey, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	var published model.PublishedSurvey
	err := r.versions.FindOne(ctx, bson.M{"surveyId": surveyID}, opts).Decode(&published)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &published, nil
}

func (r *surveyRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("surveys index: %w", err)
	}
	_, err = r.versions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "surveyId", Value: 1}, {Key: "version", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("survey_versions index: %w", err)
	}
	return nil
}
