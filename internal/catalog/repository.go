package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/tabin-ltd/kiosk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrRegisterNotFound   = errors.New("register not found")
)

// Repository loads the materialized restaurant document the register runs
// against, and resolves the device's register configuration by its key.
type Repository interface {
	GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
	GetRegisterByKey(ctx context.Context, key string) (*domain.Register, error)
}

type mongoRepository struct {
	collection *mongo.Collection
	registers  *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("restaurants"),
		registers:  db.Collection("registers"),
	}
}

func (m *mongoRepository) GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant

	filter := bson.M{"_id": restaurantID}
	err := m.collection.FindOne(ctx, filter).Decode(&restaurant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	return &restaurant, nil
}

func (m *mongoRepository) GetRegisterByKey(ctx context.Context, key string) (*domain.Register, error) {
	var register domain.Register

	err := m.registers.FindOne(ctx, bson.M{"key": key}).Decode(&register)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRegisterNotFound
		}
		return nil, fmt.Errorf("failed to get register: %w", err)
	}

	return &register, nil
}
