// server/internal/repository/establishment_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fsic-records-api-server/internal/compliance"
	"fsic-records-api-server/internal/models"
)

const EstablishmentsCollection = "establishments"

// EstablishmentRepository is the establishment persistence used by the services.
// Every call is a single round trip; there is no locking or versioning, so two
// concurrent writers to the same record race and the last one wins.
type EstablishmentRepository interface {
	Create(ctx context.Context, e *models.Establishment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Establishment, error)
	FindByFSIC(ctx context.Context, fsicNumber string) (*models.Establishment, error)
	List(ctx context.Context, f models.EstablishmentFilter) ([]models.Establishment, error)
	Update(ctx context.Context, e *models.Establishment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Point updates stamp updatedAt with the at they are given.
	SetActive(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) error
	SetCompliance(ctx context.Context, id primitive.ObjectID, compliance string, at time.Time) error
	PushRemark(ctx context.Context, id primitive.ObjectID, r models.Remark) error
	SetIssuance(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetCertificateURL(ctx context.Context, id primitive.ObjectID, url string, at time.Time) error
	FindDue(ctx context.Context, now time.Time) ([]models.Establishment, error)
	FindInspectionsToday(ctx context.Context, now time.Time) ([]models.Establishment, error)
	Stats(ctx context.Context, now time.Time) (models.Analytics, error)
}

type MongoEstablishmentRepository struct {
	collection *mongo.Collection
}

func NewEstablishmentRepository(db *mongo.Database) *MongoEstablishmentRepository {
	return &MongoEstablishmentRepository{collection: db.Collection(EstablishmentsCollection)}
}

func (r *MongoEstablishmentRepository) Create(ctx context.Context, e *models.Establishment) error {
	if e.Remarks == nil {
		// $push needs an array, never null.
		e.Remarks = []models.Remark{}
	}
	res, err := r.collection.InsertOne(ctx, e)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid
	}
	return nil
}

func (r *MongoEstablishmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Establishment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoEstablishmentRepository) FindByFSIC(ctx context.Context, fsicNumber string) (*models.Establishment, error) {
	return r.findOne(ctx, bson.M{"fsicNumber": fsicNumber})
}

func (r *MongoEstablishmentRepository) findOne(ctx context.Context, filter bson.M) (*models.Establishment, error) {
	var e models.Establishment
	if err := r.collection.FindOne(ctx, filter).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *MongoEstablishmentRepository) List(ctx context.Context, f models.EstablishmentFilter) ([]models.Establishment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "establishmentName", Value: 1}})
	return r.find(ctx, ListFilter(f), opts)
}

func (r *MongoEstablishmentRepository) FindDue(ctx context.Context, now time.Time) ([]models.Establishment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dueDate.day", Value: 1}, {Key: "establishmentName", Value: 1}})
	return r.find(ctx, DueFilter(now), opts)
}

func (r *MongoEstablishmentRepository) FindInspectionsToday(ctx context.Context, now time.Time) ([]models.Establishment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "inspectionDate", Value: 1}})
	return r.find(ctx, InspectionsTodayFilter(now), opts)
}

func (r *MongoEstablishmentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Establishment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Establishment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Establishment{}
	}
	return out, nil
}

// Update replaces the whole document. Remarks are written back as read, so
// callers must not edit them here.
func (r *MongoEstablishmentRepository) Update(ctx context.Context, e *models.Establishment) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoEstablishmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoEstablishmentRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"isActive": active, "updatedAt": at}})
}

func (r *MongoEstablishmentRepository) SetCompliance(ctx context.Context, id primitive.ObjectID, value string, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"compliance": value, "updatedAt": at}})
}

func (r *MongoEstablishmentRepository) PushRemark(ctx context.Context, id primitive.ObjectID, remark models.Remark) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"remarks": remark},
		"$set":  bson.M{"updatedAt": remark.Date},
	})
}

func (r *MongoEstablishmentRepository) SetIssuance(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"lastIssuanceDate": at, "updatedAt": at}})
}

func (r *MongoEstablishmentRepository) SetCertificateURL(ctx context.Context, id primitive.ObjectID, url string, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"certificateURL": url, "updatedAt": at}})
}

func (r *MongoEstablishmentRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats gathers the dashboard counters and the issuance chart for now's year.
func (r *MongoEstablishmentRepository) Stats(ctx context.Context, now time.Time) (models.Analytics, error) {
	var a models.Analytics
	counts := []struct {
		dst    *int64
		filter bson.M
	}{
		{&a.TotalActive, bson.M{"isActive": true}},
		{&a.Archived, bson.M{"isActive": false}},
		{&a.Compliant, bson.M{"isActive": true, "compliance": models.Compliant}},
		{&a.NonCompliant, bson.M{"isActive": true, "compliance": bson.M{"$ne": models.Compliant}}},
		{&a.DueThisMonth, DueFilter(now)},
		{&a.InspectionsToday, InspectionsTodayFilter(now)},
	}
	for _, c := range counts {
		n, err := r.collection.CountDocuments(ctx, c.filter)
		if err != nil {
			return a, err
		}
		*c.dst = n
	}

	monthly, err := r.issuancesByMonth(ctx, now)
	if err != nil {
		return a, err
	}
	a.IssuancesByMonth = monthly
	return a, nil
}

func (r *MongoEstablishmentRepository) issuancesByMonth(ctx context.Context, now time.Time) ([]models.MonthlyCount, error) {
	start := compliance.StartOfYear(now)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"lastIssuanceDate": bson.M{"$gte": start, "$lt": start.AddDate(1, 0, 0)},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$month": bson.M{
				"date":     "$lastIssuanceDate",
				"timezone": now.Format("-07:00"),
			}},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Month int   `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	byMonth := make(map[time.Month]int64, len(rows))
	for _, row := range rows {
		byMonth[time.Month(row.Month)] = row.Count
	}
	return MonthlyBuckets(byMonth), nil
}

// MonthlyBuckets expands sparse month counts into twelve ordered buckets.
func MonthlyBuckets(byMonth map[time.Month]int64) []models.MonthlyCount {
	out := make([]models.MonthlyCount, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, models.MonthlyCount{Month: m.String(), Count: byMonth[m]})
	}
	return out
}
