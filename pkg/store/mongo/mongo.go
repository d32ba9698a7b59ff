package mongo

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/search"
)

// Default collection names.
const (
	DistrictCollection = "districts"
	AddressCollection  = "addresses"
)

// DefaultAddressLimit caps the number of addresses returned per query.
const DefaultAddressLimit = 10

const connectTimeout = 10 * time.Second

// Store wraps a connected client and database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri and pings the server.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri cannot be empty")
	}
	if database == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo database cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Districts returns a source reading every document of collection.
func (s *Store) Districts(collection string) *DistrictSource {
	if collection == "" {
		collection = DistrictCollection
	}
	return &DistrictSource{coll: s.db.Collection(collection)}
}

// Addresses returns an address source over collection.
func (s *Store) Addresses(collection string, limit int64) *AddressSource {
	if collection == "" {
		collection = AddressCollection
	}
	if limit <= 0 {
		limit = DefaultAddressLimit
	}
	return &AddressSource{coll: s.db.Collection(collection), limit: limit}
}

// ReplaceDistricts upserts ds keyed by borocd.
func (s *Store) ReplaceDistricts(ctx context.Context, collection string, ds district.Dataset) error {
	coll := s.Districts(collection).coll
	models := make([]mongo.WriteModel, 0, len(ds))
	for _, r := range ds {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: district.FieldID, Value: r.ID}}).
			SetReplacement(rowDocument(r)).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}
	if _, err := coll.BulkWrite(ctx, models); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "write districts")
	}
	return nil
}

// DistrictSource loads a dataset from a collection, ordered by borocd.
type DistrictSource struct {
	coll *mongo.Collection
}

func (s *DistrictSource) Load(ctx context.Context) (district.Dataset, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: district.FieldID, Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query %s", s.coll.Name())
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", s.coll.Name())
	}

	ds := make(district.Dataset, 0, len(docs))
	for _, doc := range docs {
		row, err := rowFromDoc(doc)
		if err != nil {
			return nil, err
		}
		ds = append(ds, row)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// String names the source for logs and cache keys.
func (s *DistrictSource) String() string {
	return "mongo:" + s.coll.Database().Name() + "." + s.coll.Name()
}

// AddressSource matches addresses whose name contains every search word.
type AddressSource struct {
	coll  *mongo.Collection
	limit int64
}

type addressDoc struct {
	ID     string `bson:"id"`
	Name   string `bson:"name"`
	Borocd string `bson:"borocd,omitempty"`
}

func (s *AddressSource) Query(ctx context.Context, terms string) ([]search.Option, error) {
	filter := addressFilter(terms)
	if filter == nil {
		return nil, nil
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetLimit(s.limit).SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query %s", s.coll.Name())
	}
	var docs []addressDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", s.coll.Name())
	}
	out := make([]search.Option, 0, len(docs))
	for _, d := range docs {
		out = append(out, search.Option{Kind: search.KindAddress, ID: d.ID, Name: d.Name, Borocd: d.Borocd})
	}
	return out, nil
}

// addressFilter requires every whitespace-separated word to appear in the
// name, ignoring case. It returns nil for blank terms.
func addressFilter(terms string) bson.D {
	words := strings.Fields(terms)
	if len(words) == 0 {
		return nil
	}
	clauses := make(bson.A, 0, len(words))
	for _, w := range words {
		clauses = append(clauses, bson.D{{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(w), Options: "i"}}})
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

func rowFromDoc(doc bson.M) (district.Row, error) {
	row := district.Row{Values: make(map[string]float64, len(doc))}
	for k, v := range doc {
		switch k {
		case "_id":
		case district.FieldID:
			id, ok := idString(v)
			if !ok {
				return district.Row{}, errors.New(errors.ErrCodeInvalidFormat, "borocd has unsupported type %T", v)
			}
			row.ID = id
		case district.FieldLabel:
			if s, ok := v.(string); ok {
				row.Label = s
			}
		default:
			if f, ok := number(v); ok {
				row.Values[k] = f
			}
		}
	}
	return row, nil
}

func rowDocument(r district.Row) bson.M {
	doc := bson.M{district.FieldID: r.ID}
	if r.Label != "" {
		doc[district.FieldLabel] = r.Label
	}
	for k, v := range r.Values {
		doc[k] = v
	}
	return doc
}

func idString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if t != math.Trunc(t) {
			return "", false
		}
		return strconv.FormatInt(int64(t), 10), true
	default:
		return "", false
	}
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return district.Finite(t)
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0, false
		}
		return district.Finite(f)
	default:
		return 0, false
	}
}

// Ensure interface compliance.
var (
	_ district.Source      = (*DistrictSource)(nil)
	_ search.AddressSource = (*AddressSource)(nil)
	_ fmt.Stringer         = (*DistrictSource)(nil)
)
