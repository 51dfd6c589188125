package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adrewards/coinz/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection and singleton-record names. The layout matches the deployed
// data: a users collection unique on telegram_id and a settings collection
// holding one dailyReset document.
const (
	usersCollection    = "users"
	settingsCollection = "settings"
	dailyResetKey      = "dailyReset"
)

// windowDoc is the persisted shape of the daily-reset window.
type windowDoc struct {
	Key         string    `bson:"key"`
	NextResetAt time.Time `bson:"nextResetAt"`
}

// MongoStore is the Mongo-backed Store. Counter accrual is a single
// FindOneAndUpdate with $inc, and the window advance is a filtered update,
// so both stay atomic without any in-process coordination.
type MongoStore struct {
	users    *mongo.Collection
	settings *mongo.Collection
}

// NewMongoStore wires the store onto db and ensures its indexes.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		users:    db.Collection(usersCollection),
		settings: db.Collection(settingsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

// NewMongoStoreLazy wires the store without touching the server. Used when
// the database is unreachable at startup: operations fail until it returns,
// but the process keeps serving. Indexes are expected to already exist.
func NewMongoStoreLazy(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:    db.Collection(usersCollection),
		settings: db.Collection(settingsCollection),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "telegram_id", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}
	_, err := s.settings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// AddReward upserts the user and increments both counters in one $inc.
func (s *MongoStore) AddReward(ctx context.Context, telegramID, username string, amount float64) (model.User, error) {
	update := bson.M{
		"$inc":         bson.M{"coinzTotal": amount, "coinzDaily": amount},
		"$setOnInsert": bson.M{"telegram_id": telegramID},
	}
	if username != "" {
		update["$set"] = bson.M{"telegram_username": username}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u model.User
	if err := s.users.FindOneAndUpdate(ctx, bson.M{"telegram_id": telegramID}, update, opts).Decode(&u); err != nil {
		return model.User{}, fmt.Errorf("add reward: %w", err)
	}
	return u, nil
}

// GetUser returns the record for telegramID.
func (s *MongoStore) GetUser(ctx context.Context, telegramID string) (model.User, error) {
	var u model.User
	err := s.users.FindOne(ctx, bson.M{"telegram_id": telegramID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// TopN reads the ranked page straight from an indexed, sorted, limited find.
func (s *MongoStore) TopN(ctx context.Context, kind model.LeaderboardKind, n int) ([]model.User, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	field := "coinzTotal"
	if kind == model.KindDaily {
		field = "coinzDaily"
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: -1}, {Key: "telegram_id", Value: 1}}).
		SetLimit(int64(n)).
		SetProjection(bson.M{"_id": 0})

	cur, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("leaderboard find: %w", err)
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("leaderboard decode: %w", err)
	}
	return users, nil
}

// ResetDaily zeroes every daily counter in one bulk update.
func (s *MongoStore) ResetDaily(ctx context.Context) (int64, error) {
	res, err := s.users.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"coinzDaily": 0.0}})
	if err != nil {
		return 0, fmt.Errorf("reset daily: %w", err)
	}
	return res.ModifiedCount, nil
}

// Window returns the persisted next-reset instant, if any.
func (s *MongoStore) Window(ctx context.Context) (time.Time, bool, error) {
	var doc windowDoc
	err := s.settings.FindOne(ctx, bson.M{"key": dailyResetKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read window: %w", err)
	}
	return doc.NextResetAt.UTC(), true, nil
}

// SeedWindow creates the window document if absent. $setOnInsert plus
// ReturnDocument(After) makes concurrent seeders all observe the one value
// that actually landed.
func (s *MongoStore) SeedWindow(ctx context.Context, next time.Time) (time.Time, error) {
	update := bson.M{
		"$setOnInsert": bson.M{"key": dailyResetKey, "nextResetAt": next.UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc windowDoc
	if err := s.settings.FindOneAndUpdate(ctx, bson.M{"key": dailyResetKey}, update, opts).Decode(&doc); err != nil {
		return time.Time{}, fmt.Errorf("seed window: %w", err)
	}
	return doc.NextResetAt.UTC(), nil
}

// AdvanceWindow is the compare-and-swap: the filter pins the previous value,
// so a concurrent advance leaves ModifiedCount at zero here.
// BSON datetimes carry millisecond precision; prev always comes from a prior
// read, so the equality filter holds.
func (s *MongoStore) AdvanceWindow(ctx context.Context, prev, next time.Time) (bool, error) {
	filter := bson.M{"key": dailyResetKey, "nextResetAt": prev.UTC()}
	res, err := s.settings.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"nextResetAt": next.UTC().Truncate(time.Millisecond)}})
	if err != nil {
		return false, fmt.Errorf("advance window: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// CountUsers returns the number of reward accounts.
func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
