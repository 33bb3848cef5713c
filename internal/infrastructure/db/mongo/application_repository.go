package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

const collectionApplications = "citizen_applications"

// ApplicationRepository implements ports.ApplicationRepository using MongoDB.
type ApplicationRepository struct {
	col *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{col: db.Collection(collectionApplications)}
}

type applicationDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID string             `bson:"user_id"`

	Service           string `bson:"service"`
	FullName          string `bson:"full_name"`
	FullNameNe        string `bson:"full_name_ne,omitempty"`
	DateOfBirth       string `bson:"date_of_birth,omitempty"`
	DateOfBirthBS     string `bson:"date_of_birth_bs,omitempty"`
	CitizenshipNumber string `bson:"citizenship_number"`
	Address           string `bson:"address"`
	Phone             string `bson:"phone"`
	Email             string `bson:"email"`

	FatherName        string `bson:"father_name,omitempty"`
	FatherNameNe      string `bson:"father_name_ne,omitempty"`
	MotherName        string `bson:"mother_name,omitempty"`
	MotherNameNe      string `bson:"mother_name_ne,omitempty"`
	GrandfatherName   string `bson:"grandfather_name,omitempty"`
	GrandfatherNameNe string `bson:"grandfather_name_ne,omitempty"`

	CitizenshipFrontURL string `bson:"citizenship_front_url,omitempty"`
	CitizenshipBackURL  string `bson:"citizenship_back_url,omitempty"`

	Status         string                      `bson:"status"`
	CreatedAt      time.Time                   `bson:"created_at"`
	ProcessedAt    *time.Time                  `bson:"processed_at"`
	Notes          string                      `bson:"notes,omitempty"`
	IdempotencyKey string                      `bson:"idempotency_key,omitempty"`
	StatusHistory  []domain.StatusHistoryEntry `bson:"status_history"`
}

func toApplicationDocument(a *domain.Application) applicationDocument {
	return applicationDocument{
		UserID:              a.UserID,
		Service:             string(a.Service),
		FullName:            a.FullName,
		FullNameNe:          a.FullNameNe,
		DateOfBirth:         a.DateOfBirth,
		DateOfBirthBS:       a.DateOfBirthBS,
		CitizenshipNumber:   a.CitizenshipNumber,
		Address:             a.Address,
		Phone:               a.Phone,
		Email:               a.Email,
		FatherName:          a.FatherName,
		FatherNameNe:        a.FatherNameNe,
		MotherName:          a.MotherName,
		MotherNameNe:        a.MotherNameNe,
		GrandfatherName:     a.GrandfatherName,
		GrandfatherNameNe:   a.GrandfatherNameNe,
		CitizenshipFrontURL: a.CitizenshipFrontURL,
		CitizenshipBackURL:  a.CitizenshipBackURL,
		Status:              string(a.Status),
		CreatedAt:           a.CreatedAt.UTC(),
		ProcessedAt:         a.ProcessedAt,
		Notes:               a.Notes,
		IdempotencyKey:      a.IdempotencyKey,
		StatusHistory:       a.StatusHistory,
	}
}

func (d *applicationDocument) toDomain() *domain.Application {
	return &domain.Application{
		ID:                  d.ID.Hex(),
		UserID:              d.UserID,
		Service:             domain.ServiceType(d.Service),
		FullName:            d.FullName,
		FullNameNe:          d.FullNameNe,
		DateOfBirth:         d.DateOfBirth,
		DateOfBirthBS:       d.DateOfBirthBS,
		CitizenshipNumber:   d.CitizenshipNumber,
		Address:             d.Address,
		Phone:               d.Phone,
		Email:               d.Email,
		FatherName:          d.FatherName,
		FatherNameNe:        d.FatherNameNe,
		MotherName:          d.MotherName,
		MotherNameNe:        d.MotherNameNe,
		GrandfatherName:     d.GrandfatherName,
		GrandfatherNameNe:   d.GrandfatherNameNe,
		CitizenshipFrontURL: d.CitizenshipFrontURL,
		CitizenshipBackURL:  d.CitizenshipBackURL,
		Status:              domain.ApplicationStatus(d.Status),
		CreatedAt:           d.CreatedAt,
		ProcessedAt:         d.ProcessedAt,
		Notes:               d.Notes,
		IdempotencyKey:      d.IdempotencyKey,
		StatusHistory:       d.StatusHistory,
	}
}

// Create inserts a new application document and sets app.ID.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toApplicationDocument(app))
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		app.ID = oid.Hex()
	}
	return nil
}

// FindByID retrieves an application by ID.
// When userID is non-empty, an additional filter by user_id is applied.
func (r *ApplicationRepository) FindByID(ctx context.Context, id, userID string) (*domain.Application, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	filter := bson.M{"_id": oid}
	if userID != "" {
		filter["user_id"] = userID
	}
	return r.findOne(ctx, filter)
}

// FindByIdempotencyKey retrieves the application userID created with key.
func (r *ApplicationRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Application, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "idempotency_key": key})
}

func (r *ApplicationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc applicationDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns a page of applications matching filter, newest first, and the
// total number of matches.
func (r *ApplicationRepository) List(ctx context.Context, filter ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Service != "" {
		query["service"] = filter.Service
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer cur.Close(ctx)

	var docs []applicationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode applications: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	items := make([]*domain.Application, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toDomain())
	}
	return items, total, nil
}

// UpdateStatus atomically sets the status and appends a history entry, but
// only while the stored status still equals from.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, from domain.ApplicationStatus, update ports.StatusUpdate) (*domain.Application, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"status": string(update.Status)}
	if update.ProcessedAt != nil {
		set["processed_at"] = update.ProcessedAt.UTC()
	}
	if update.Notes != "" {
		set["notes"] = update.Notes
	}

	filter := bson.M{"_id": oid, "status": string(from)}
	change := bson.M{
		"$set":  set,
		"$push": bson.M{"status_history": update.History},
	}

	var doc applicationDocument
	err = r.col.FindOneAndUpdate(ctx, filter, change,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("update application status: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates necessary indexes on the applications collection.
func (r *ApplicationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "service", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$type": "string"}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
