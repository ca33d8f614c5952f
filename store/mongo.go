package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

const (
	CollectionDishes   = "dishes"
	CollectionBehavior = "logs_behavior"
)

// MongoRepository 读写 MongoDB 中的 dishes 与 logs_behavior 集合。
//
// ID 以 ObjectID 存储；不是合法 24 位十六进制的 ID 按原样字符串存储。
type MongoRepository struct {
	client   *mongo.Client
	dishes   *mongo.Collection
	behavior *mongo.Collection
}

var _ Repository = (*MongoRepository)(nil)

// OpenMongo 连接并 PING 一次。
func OpenMongo(ctx context.Context, uri, database string, timeout time.Duration) (*MongoRepository, error) {
	opt := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opt.SetTimeout(timeout)
	}
	client, err := mongo.Connect(opt)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewMongoRepository(client, database), nil
}

func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	db := client.Database(database)
	return &MongoRepository{
		client:   client,
		dishes:   db.Collection(CollectionDishes),
		behavior: db.Collection(CollectionBehavior),
	}
}

type dishDoc struct {
	ID         any      `bson:"_id"`
	Name       string   `bson:"name"`
	Category   string   `bson:"category"`
	Price      float64  `bson:"price"`
	Calories   int      `bson:"calories"`
	Tags       []string `bson:"tags"`
	Popularity *float64 `bson:"popularity_score,omitempty"`
}

type behaviorDoc struct {
	UserID    any       `bson:"user_id"`
	DishID    any       `bson:"dish_id"`
	Action    string    `bson:"action"`
	Timestamp time.Time `bson:"timestamp"`
}

func (r *MongoRepository) ListDishes(ctx context.Context) ([]core.Dish, error) {
	cur, err := r.dishes.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find dishes: %w", err)
	}
	var docs []dishDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode dishes: %w", err)
	}
	dishes := make([]core.Dish, 0, len(docs))
	for _, d := range docs {
		dishes = append(dishes, core.Dish{
			ID:         idString(d.ID),
			Name:       d.Name,
			Category:   d.Category,
			Price:      d.Price,
			Calories:   d.Calories,
			Tags:       d.Tags,
			Popularity: d.Popularity,
		})
	}
	return dishes, nil
}

func (r *MongoRepository) AddDish(ctx context.Context, dish core.Dish) error {
	if dish.ID == "" {
		return core.NewInputError(core.ModuleStore, "dish id is empty")
	}
	id := idValue(dish.ID)
	doc := dishDoc{
		ID:         id,
		Name:       dish.Name,
		Category:   dish.Category,
		Price:      dish.Price,
		Calories:   dish.Calories,
		Tags:       dish.Tags,
		Popularity: dish.Popularity,
	}
	_, err := r.dishes.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert dish %s: %w", dish.ID, err)
	}
	return nil
}

func (r *MongoRepository) AppendOrder(ctx context.Context, event core.OrderEvent) error {
	if event.UserID == "" {
		return core.ErrEmptyUserID
	}
	if event.Action == "" {
		event.Action = core.ActionOrder
	}
	_, err := r.behavior.InsertOne(ctx, behaviorDoc{
		UserID:    idValue(event.UserID),
		DishID:    idValue(event.DishID),
		Action:    event.Action,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("insert behavior: %w", err)
	}
	return nil
}

func (r *MongoRepository) RecentOrders(ctx context.Context, userID string, limit int) ([]core.OrderEvent, error) {
	filter := bson.D{
		{Key: "user_id", Value: idValue(userID)},
		{Key: "action", Value: core.ActionOrder},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.findEvents(ctx, filter, opts)
}

// AllPeerOrders 按写入顺序（_id 升序）返回全部下单行为。
func (r *MongoRepository) AllPeerOrders(ctx context.Context) ([]core.OrderEvent, error) {
	filter := bson.D{{Key: "action", Value: core.ActionOrder}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.findEvents(ctx, filter, opts)
}

func (r *MongoRepository) findEvents(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]core.OrderEvent, error) {
	cur, err := r.behavior.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find behavior: %w", err)
	}
	var docs []behaviorDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode behavior: %w", err)
	}
	events := make([]core.OrderEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, core.OrderEvent{
			UserID:    idString(d.UserID),
			DishID:    idString(d.DishID),
			Action:    d.Action,
			Timestamp: d.Timestamp,
		})
	}
	return events, nil
}

func (r *MongoRepository) ResetHistory(ctx context.Context, userID string) error {
	if _, err := r.behavior.DeleteMany(ctx, bson.D{{Key: "user_id", Value: idValue(userID)}}); err != nil {
		return fmt.Errorf("delete behavior of %s: %w", userID, err)
	}
	return nil
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// idValue 把十六进制 ID 转成 ObjectID，其它保持字符串。
func idValue(id string) any {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
