package mongo

import (
	"context"
	"errors"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const scheduleCollectionName = "schedules"

// mongoScheduleRepository implements repository.ScheduleRepository
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new Schedule repository backed by MongoDB.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// slotField maps a plan slot to its bson field name.
func slotField(slot domain.PlanSlot) string {
	return string(slot)
}

// tierFilter matches a global record's tier. Records written before the
// isPublic field existed carry no value at all; those match the free tier.
func tierFilter(isPublic bool) bson.M {
	if isPublic {
		return bson.M{"isPublic": true}
	}
	return bson.M{"$or": []bson.M{
		{"isPublic": false},
		{"isPublic": bson.M{"$exists": false}},
	}}
}

// GetByID retrieves a single schedule record.
func (r *mongoScheduleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Schedule, error) {
	var schedule domain.Schedule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// FindForUserInRange returns every record in [start, end] that is visible to
// the resolver for this user: global records plus the user's personal ones.
func (r *mongoScheduleRepository) FindForUserInRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.Schedule, error) {
	filter := bson.M{
		"date": bson.M{"$gte": start, "$lte": end},
		"$or": []bson.M{
			{"isGlobal": true},
			{"user": userID, "isGlobal": false},
		},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []domain.Schedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindByDay returns every record for one day across all tiers and users.
func (r *mongoScheduleRepository) FindByDay(ctx context.Context, day time.Time) ([]domain.Schedule, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"date": day})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []domain.Schedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindGlobalBySlotPlanInRange returns global records of one tier whose given
// slot references the given plan, within [start, end].
func (r *mongoScheduleRepository) FindGlobalBySlotPlanInRange(ctx context.Context, slot domain.PlanSlot, planID primitive.ObjectID, isPublic bool, start, end time.Time) ([]domain.Schedule, error) {
	filter := bson.M{
		"isGlobal":        true,
		slotField(slot):   planID,
		"date":            bson.M{"$gte": start, "$lte": end},
	}
	for k, v := range tierFilter(isPublic) {
		filter[k] = v
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []domain.Schedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return schedules, nil
}

// UpsertGlobal atomically sets one slot on the global record keyed by
// (date, isGlobal=true, isPublic), inserting it when absent. Concurrent
// admin writes to the same key are last-write-wins by contract.
func (r *mongoScheduleRepository) UpsertGlobal(ctx context.Context, date time.Time, isPublic bool, slot domain.PlanSlot, planID, assignedBy primitive.ObjectID) (*domain.Schedule, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"date":     date,
		"isGlobal": true,
	}
	for k, v := range tierFilter(isPublic) {
		filter[k] = v
	}

	update := bson.M{
		"$set": bson.M{
			slotField(slot): planID,
			"isPublic":      isPublic,
			"assignedBy":    assignedBy,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var schedule domain.Schedule
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&schedule)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// UpsertPersonal atomically sets one slot on the personal record keyed by
// (date, user, isGlobal=false), inserting it when absent.
func (r *mongoScheduleRepository) UpsertPersonal(ctx context.Context, date time.Time, userID primitive.ObjectID, slot domain.PlanSlot, planID, assignedBy primitive.ObjectID) (*domain.Schedule, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"date":     date,
		"user":     userID,
		"isGlobal": false,
	}
	update := bson.M{
		"$set": bson.M{
			slotField(slot): planID,
			"assignedBy":    assignedBy,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{
			"isPublic":  false,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var schedule domain.Schedule
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&schedule)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ClearSlot unsets one slot on a record, keeping the record itself. The
// service decides whether an empty record should then be deleted.
func (r *mongoScheduleRepository) ClearSlot(ctx context.Context, id primitive.ObjectID, slot domain.PlanSlot) error {
	update := bson.M{
		"$unset": bson.M{slotField(slot): ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes one schedule record.
func (r *mongoScheduleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByPlan clears the slot on every record referencing the plan, then
// removes records left with neither slot set. A record that also carries the
// other plan type survives with that value intact.
func (r *mongoScheduleRepository) DeleteByPlan(ctx context.Context, slot domain.PlanSlot, planID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{slotField(slot): planID},
		bson.M{
			"$unset": bson.M{slotField(slot): ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteMany(ctx, bson.M{
		"workout":  bson.M{"$exists": false},
		"mealPlan": bson.M{"$exists": false},
	})
	return err
}

// EnsureScheduleIndexes creates necessary indexes for the schedules collection.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// At most one global record per (date, tier). Partial so that
			// personal records are not constrained by the pair.
			Keys: bson.D{{Key: "date", Value: 1}, {Key: "isGlobal", Value: 1}, {Key: "isPublic", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isGlobal": true}),
		},
		{
			// Personal lookups by user and date.
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
