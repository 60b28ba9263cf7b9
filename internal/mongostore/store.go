package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/septivank/attendance-ingestion-worker/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Store keeps fingerprints, offices and attendance in MongoDB collections.
type Store struct {
	fingerprints *mongo.Collection
	offices      *mongo.Collection
	attendance   *mongo.Collection
}

// New connects a client for uri and registers ping/disconnect hooks.
func New(lc fx.Lifecycle, logger *zap.Logger, uri, database string) (*Store, error) {
	logger.Info("initializing mongodb client", zap.String("database", database))

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("[MONGODB] failed to create client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("attempting to connect to mongodb...")
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				logger.Error("mongodb ping failed", zap.Error(err))
				return fmt.Errorf("[MONGODB CONNECTION FAILED] cannot reach mongodb. Please check: 1) MongoDB is running, 2) DATABASE_URL is correct. Error: %w", err)
			}
			logger.Info("mongodb connection established successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := client.Disconnect(ctx); err != nil {
				logger.Error("failed to disconnect mongodb", zap.Error(err))
				return err
			}
			logger.Info("mongodb connection closed")
			return nil
		},
	})

	return NewFromDatabase(client.Database(database)), nil
}

// NewFromDatabase builds a store on an already connected database.
func NewFromDatabase(db *mongo.Database) *Store {
	return &Store{
		fingerprints: db.Collection(fingerprintCollection),
		offices:      db.Collection(officeCollection),
		attendance:   db.Collection(attendanceCollection),
	}
}

// FindFingerprint returns the most recently stored fingerprint of a user.
func (s *Store) FindFingerprint(ctx context.Context, userID string) (*domain.DeviceFingerprint, error) {
	const op = "mongostore.FindFingerprint"

	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})

	var doc fingerprintDoc
	err := s.fingerprints.FindOne(ctx, bson.D{{Key: "userid", Value: userID}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: user %s: %w", op, userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.WrapStoreError(op, err)
	}

	return doc.toDomain(), nil
}

// RegisterFingerprint inserts fp only when the user has no fingerprint yet.
func (s *Store) RegisterFingerprint(ctx context.Context, fp domain.DeviceFingerprint) error {
	const op = "mongostore.RegisterFingerprint"

	// userid comes from the filter on insert
	doc := fingerprintDoc{
		OSName:       fp.Device.OSName,
		OSVersion:    fp.Device.OSVersion,
		Brand:        fp.Device.Brand,
		Model:        fp.Device.Model,
		Manufacturer: fp.Device.Manufacturer,
		CreatedAt:    fp.CreatedAt,
	}

	_, err := s.fingerprints.UpdateOne(ctx,
		bson.D{{Key: "userid", Value: fp.UserID}},
		bson.D{{Key: "$setOnInsert", Value: doc}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return domain.WrapStoreError(op, err)
	}
	return nil
}

// ListOffices returns every office in natural order.
func (s *Store) ListOffices(ctx context.Context) ([]domain.Office, error) {
	const op = "mongostore.ListOffices"

	cursor, err := s.offices.Find(ctx, bson.D{})
	if err != nil {
		return nil, domain.WrapStoreError(op, err)
	}
	defer cursor.Close(ctx)

	var offices []domain.Office
	for cursor.Next(ctx) {
		office, err := officeFromRaw(cursor.Current)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to decode office: %w", op, err)
		}
		offices = append(offices, office)
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.WrapStoreError(op, err)
	}
	return offices, nil
}

// InsertAttendance inserts one attendance document.
func (s *Store) InsertAttendance(ctx context.Context, rec *domain.AttendanceRecord) (string, error) {
	const op = "mongostore.InsertAttendance"

	res, err := s.attendance.InsertOne(ctx, newAttendanceDoc(rec))
	if err != nil {
		return "", domain.WrapStoreError(op, err)
	}

	rec.ID = formatID(res.InsertedID)
	return rec.ID, nil
}
