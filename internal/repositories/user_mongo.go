package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/sbilibin2017/gw-user-registry/internal/stats"
)

const userCollection = "users"

// NewMongoClient creates a client without contacting the server. The driver
// connects lazily, so an unreachable server only shows up on Ping or on the
// first operation.
func NewMongoClient(uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}

// ConnectMongo opens a client and waits for a successful ping, bounded by timeout.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	client, err := NewMongoClient(uri, timeout)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// UserMongoRepository stores users in a MongoDB collection with a unique
// index on email.
type UserMongoRepository struct {
	db           *mongo.Database
	indexesReady atomic.Bool
}

// NewUserMongoRepository creates a repository on db.
func NewUserMongoRepository(db *mongo.Database) *UserMongoRepository {
	return &UserMongoRepository{db: db}
}

func (r *UserMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(userCollection)
}

// EnsureIndexes creates the unique email index and the created_at index.
func (r *UserMongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	if _, err := r.collection().Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	r.indexesReady.Store(true)
	return nil
}

// Name implements the store contract.
func (r *UserMongoRepository) Name() string {
	return "mongo"
}

// Ping checks the server is reachable. Until EnsureIndexes has succeeded
// once, a successful ping also creates the indexes, and the store is not
// reported usable without its unique email index.
func (r *UserMongoRepository) Ping(ctx context.Context) error {
	if err := r.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return err
	}
	if r.indexesReady.Load() {
		return nil
	}
	return r.EnsureIndexes(ctx)
}

// Create inserts the user keeping its identifier.
func (r *UserMongoRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.collection().InsertOne(ctx, user)

	logger.Log.Infow("mongo insert",
		"collection", userCollection,
		"id", user.ID,
		"error", err,
	)

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// Insert stores a copy of user under an identifier assigned by the database.
func (r *UserMongoRepository) Insert(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = bson.NewObjectID().Hex()
	if err := r.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks a user up by its lowercased email.
func (r *UserMongoRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// FindByID looks a user up by identifier.
func (r *UserMongoRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserMongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection().FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// All returns every user, oldest first.
func (r *UserMongoRepository) All(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

// List returns a page of users sorted by creation time, newest first.
func (r *UserMongoRepository) List(ctx context.Context, params models.ListParams) (*models.UserPage, error) {
	params = params.Normalize()

	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = params.Status
	}

	total, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.PageSize))

	users, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	return &models.UserPage{
		Users:      users,
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      int(total),
		TotalPages: models.TotalPages(int(total), params.PageSize),
	}, nil
}

func (r *UserMongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]models.User, error) {
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Statistics counts matching documents server side.
func (r *UserMongoRepository) Statistics(ctx context.Context, now time.Time) (*models.StatsSnapshot, error) {
	start, end := stats.DayBounds(now)

	snap := &models.StatsSnapshot{LastUpdated: now}
	counts := []struct {
		filter bson.M
		dst    *int
	}{
		{bson.M{}, &snap.TotalUsers},
		{bson.M{"status": models.StatusActive}, &snap.ActiveUsers},
		{bson.M{"email_verified": true}, &snap.VerifiedUsers},
		{bson.M{"newsletter_subscription": true}, &snap.NewsletterSubscribers},
		{bson.M{"created_at": bson.M{"$gte": start, "$lt": end}}, &snap.RegistrationsToday},
	}

	for _, c := range counts {
		n, err := r.collection().CountDocuments(ctx, c.filter)
		if err != nil {
			return nil, fmt.Errorf("count users: %w", err)
		}
		*c.dst = int(n)
	}

	latest, err := r.find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(1))
	if err != nil {
		return nil, err
	}
	if len(latest) == 1 {
		t := latest[0].CreatedAt
		snap.LastRegistration = &t
	}

	return snap, nil
}
