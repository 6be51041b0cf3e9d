package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pricetrack/internal/domain/item"
)

type itemDoc struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	ID          string             `bson:"id"`
	Description string             `bson:"description"`
	Cost        bson.RawValue      `bson:"cost"`
	Date        time.Time          `bson:"date"`
	URL         string             `bson:"url"`
	UserID      primitive.ObjectID `bson:"userId"`
}

func newItemDoc(it *item.Item) (*itemDoc, error) {
	userID, err := primitive.ObjectIDFromHex(it.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", it.UserID, err)
	}

	cost, err := primitive.ParseDecimal128(it.Cost.String())
	if err != nil {
		return nil, fmt.Errorf("cost %s does not fit decimal128: %w", it.Cost, err)
	}
	t, data, err := bson.MarshalValue(cost)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cost: %w", err)
	}

	return &itemDoc{
		ID:          it.ID,
		Description: it.Description,
		Cost:        bson.RawValue{Type: t, Value: data},
		Date:        it.Date,
		URL:         it.URL,
		UserID:      userID,
	}, nil
}

func (d *itemDoc) toDomain() (*item.Item, error) {
	cost, err := decodeCost(d.Cost)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", d.ID, err)
	}
	return &item.Item{
		ID:          d.ID,
		Description: d.Description,
		Cost:        cost,
		Date:        d.Date.UTC(),
		URL:         d.URL,
		UserID:      d.UserID.Hex(),
	}, nil
}

// decodeCost reads decimal128 costs as well as the plain numbers written by
// older clients.
func decodeCost(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bson.TypeDecimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bson.TypeDouble:
		return decimal.NewFromFloat(v.Double()), nil
	case bson.TypeInt32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bson.TypeInt64:
		return decimal.NewFromInt(v.Int64()), nil
	case bson.TypeString:
		return decimal.NewFromString(v.StringValue())
	default:
		return decimal.Zero, fmt.Errorf("unsupported cost type %s", v.Type)
	}
}

type ItemRepository struct {
	coll *mongo.Collection
}

var _ item.Repository = (*ItemRepository)(nil)

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{coll: db.collection(itemsCollection)}
}

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) (err error) {
	ctx, span := startSpan(ctx, itemsCollection, "insertOne")
	defer func() { endSpan(span, err) }()

	doc, err := newItemDoc(it)
	if err != nil {
		return err
	}

	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return item.ErrDuplicateItem
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

func (r *ItemRepository) ListByUserID(ctx context.Context, userID string) (items []*item.Item, err error) {
	ctx, span := startSpan(ctx, itemsCollection, "find")
	defer func() { endSpan(span, err) }()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		// No item can reference an id that is not an ObjectID.
		return []*item.Item{}, nil
	}

	cursor, err := r.coll.Find(ctx,
		bson.D{{Key: "userId", Value: oid}},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var docs []itemDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	items = make([]*item.Item, 0, len(docs))
	for i := range docs {
		it, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
