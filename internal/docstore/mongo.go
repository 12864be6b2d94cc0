package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"latthi-storefront/internal/domain"
)

// mongoDoc is the stored shape: the path is the _id and the JSON body sits
// under data so document fields never collide with bookkeeping.
type mongoDoc struct {
	Path      string    `bson:"_id"`
	Data      bson.M    `bson:"data"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *log.Logger
}

// NewMongo returns a Store over a single collection. Commit uses a
// multi-document transaction, so the server must run as a replica set.
func NewMongo(client *mongo.Client, db *mongo.Database, logger *log.Logger) Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &mongoStore{
		client:     client,
		collection: db.Collection("documents"),
		logger:     logger,
	}
}

func (s *mongoStore) Get(ctx context.Context, path string) (*Document, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var raw mongoDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": path}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		s.logger.Printf("docstore: get path=%s error=%v", path, err)
		return nil, err
	}
	return raw.document()
}

func (s *mongoStore) List(ctx context.Context, prefix string) ([]Document, error) {
	if err := validatePath(prefix); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix+"/")}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		s.logger.Printf("docstore: list prefix=%s error=%v", prefix, err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var raws []mongoDoc
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, err
	}

	out := make([]Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := raw.document()
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (s *mongoStore) Commit(ctx context.Context, writes ...Write) error {
	if err := validateWrites(writes); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, w := range writes {
			if err := s.applyInTx(sc, w); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrVersionConflict) {
			s.logger.Printf("docstore: commit writes=%d error=%v", len(writes), err)
		}
		return err
	}
	return nil
}

func (s *mongoStore) applyInTx(sc mongo.SessionContext, w Write) error {
	var cur mongoDoc
	exists := true
	if err := s.collection.FindOne(sc, bson.M{"_id": w.Path}).Decode(&cur); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		exists = false
	}

	if err := checkVersion(w, exists, cur.Version); err != nil {
		return err
	}

	if w.Delete {
		if !exists {
			return nil
		}
		_, err := s.collection.DeleteOne(sc, bson.M{"_id": w.Path})
		return err
	}

	var currentData map[string]interface{}
	if exists {
		currentData = map[string]interface{}(cur.Data)
	}
	next, err := applyWrite(currentData, w)
	if err != nil {
		return fmt.Errorf("apply write %s: %w", w.Path, err)
	}

	now := time.Now().UTC()
	if !exists {
		_, err := s.collection.InsertOne(sc, mongoDoc{Path: w.Path, Data: bson.M(next), Version: 1, UpdatedAt: now})
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s created concurrently", domain.ErrVersionConflict, w.Path)
		}
		return err
	}

	res, err := s.collection.UpdateOne(sc,
		bson.M{"_id": w.Path, "version": cur.Version},
		bson.M{
			"$set": bson.M{"data": next, "updatedAt": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s changed during commit", domain.ErrVersionConflict, w.Path)
	}
	return nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (d mongoDoc) document() (*Document, error) {
	data, err := normalize(map[string]interface{}(d.Data))
	if err != nil {
		return nil, err
	}
	return &Document{Path: d.Path, Data: data, Version: d.Version, UpdatedAt: d.UpdatedAt}, nil
}
