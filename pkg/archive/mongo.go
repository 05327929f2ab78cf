package archive

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docviz/docviz/pkg/errors"
	"github.com/docviz/docviz/pkg/graphson"
)

const snapshotCollection = "snapshots"

// MongoStore archives snapshots in a MongoDB collection. The document
// payload is stored as encoded JSON so the interchange format on disk and
// in the database stays byte-identical.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoSnapshot is the stored shape of a snapshot.
type mongoSnapshot struct {
	BuildID   string    `bson:"build_id"`
	CreatedAt time.Time `bson:"created_at"`
	Vertices  int       `bson:"vertices"`
	Edges     int       `bson:"edges"`
	Document  []byte    `bson:"document"`
}

// NewMongoStore connects to MongoDB and returns a snapshot store using the
// given database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(snapshotCollection),
	}, nil
}

// Put archives a snapshot, overwriting any previous one for the same build.
func (s *MongoStore) Put(ctx context.Context, snap Snapshot) error {
	if snap.BuildID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot has no build id")
	}
	payload, err := json.Marshal(snap.Document)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}
	stored := mongoSnapshot{
		BuildID:   snap.BuildID,
		CreatedAt: snap.CreatedAt,
		Vertices:  snap.Vertices,
		Edges:     snap.Edges,
		Document:  payload,
	}
	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"build_id": snap.BuildID},
		stored,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "store snapshot")
	}
	return nil
}

// Get retrieves a snapshot by build id.
func (s *MongoStore) Get(ctx context.Context, buildID string) (Snapshot, error) {
	var stored mongoSnapshot
	err := s.coll.FindOne(ctx, bson.M{"build_id": buildID}).Decode(&stored)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Snapshot{}, errors.New(errors.ErrCodeNotFound, "no snapshot for build %s", buildID)
		}
		return Snapshot{}, errors.Wrap(errors.ErrCodeNetwork, err, "load snapshot")
	}

	var doc graphson.Document
	if err := json.Unmarshal(stored.Document, &doc); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot %s", buildID)
	}
	return Snapshot{
		BuildID:   stored.BuildID,
		CreatedAt: stored.CreatedAt,
		Vertices:  stored.Vertices,
		Edges:     stored.Edges,
		Document:  doc,
	}, nil
}

// List returns snapshot metadata, newest first.
func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"document": 0})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list snapshots")
	}
	defer cursor.Close(ctx)

	var infos []Info
	for cursor.Next(ctx) {
		var stored mongoSnapshot
		if err := cursor.Decode(&stored); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot listing")
		}
		infos = append(infos, Info{
			BuildID:   stored.BuildID,
			CreatedAt: stored.CreatedAt,
			Vertices:  stored.Vertices,
			Edges:     stored.Edges,
		})
	}
	return infos, cursor.Err()
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
