package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shoparak/shop-backend/services/shop/models"
)

// ErrProductNotFound is returned when a product id has no catalog entry.
var ErrProductNotFound = mongo.ErrNoDocuments

// ProductRepository defines catalog data access.
type ProductRepository interface {
	FindAll(ctx context.Context, category string, availableOnly bool) ([]models.Product, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id int64, updates bson.M) (int64, error)
	SoftDelete(ctx context.Context, id int64) (int64, error)
	Categories(ctx context.Context) ([]string, error)
}

// MongoProductRepository implements ProductRepository on MongoDB. Product ids
// are allocated from a findOneAndUpdate counter so they stay small integers.
type MongoProductRepository struct {
	products *mongo.Collection
	counters *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		products: db.Collection("products"),
		counters: db.Collection("counters"),
	}
}

func (r *MongoProductRepository) nextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "product_id"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

func (r *MongoProductRepository) FindAll(ctx context.Context, category string, availableOnly bool) ([]models.Product, error) {
	filter := bson.M{}
	if availableOnly {
		filter["is_available"] = true
	}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := r.products.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	_, err = r.products.InsertOne(ctx, p)
	return err
}

// Update applies the given $set fields and returns the matched count.
func (r *MongoProductRepository) Update(ctx context.Context, id int64, updates bson.M) (int64, error) {
	updates["updated_at"] = time.Now().UTC()
	res, err := r.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// SoftDelete marks the product unavailable instead of removing it, so order
// history keeps resolving.
func (r *MongoProductRepository) SoftDelete(ctx context.Context, id int64) (int64, error) {
	res, err := r.products.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_available": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *MongoProductRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.products.Distinct(ctx, "category",
		bson.M{"is_available": true, "category": bson.M{"$ne": ""}})
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}
