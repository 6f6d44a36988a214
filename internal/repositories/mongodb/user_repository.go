package mongodb

import (
	"context"
	"fmt"
	"time"

	"swyft/internal/models"
	"swyft/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetDriverByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{
		"email": email,
		"role":  models.UserRoleDriver,
	}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	return &user, nil
}

func (r *userRepository) ListDrivers(ctx context.Context) ([]*models.DriverSummary, error) {
	opts := options.Find().SetProjection(bson.M{
		"first_name":    1,
		"last_name":     1,
		"email":         1,
		"phone":         1,
		"vehicle_plate": 1,
	})

	cursor, err := r.collection.Find(ctx, bson.M{"role": models.UserRoleDriver}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find drivers: %w", err)
	}
	defer cursor.Close(ctx)

	drivers := []*models.DriverSummary{}
	for cursor.Next(ctx) {
		var driver models.DriverSummary
		if err := cursor.Decode(&driver); err != nil {
			return nil, fmt.Errorf("failed to decode driver: %w", err)
		}
		drivers = append(drivers, &driver)
	}

	return drivers, cursor.Err()
}
