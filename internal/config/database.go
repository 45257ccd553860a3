package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

// InitMongoDB opens the MongoDB connection used for the audit trail
func InitMongoDB(cfg *Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)

	if err := ensureAuditLogsIndex(ctx, db.Collection(cfg.AuditLogsCollection)); err != nil {
		logging.Logger.Error("failed to ensure audit_logs indexes on startup", zap.Error(err))
	}

	logging.Logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(cfg.MongoURI)),
		zap.String("database", cfg.MongoDatabase),
	)
	return db, nil
}

// InitRedis initializes the Redis connection wrapped with tracing
func InitRedis(cfg *Config) (*redisclient.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisURI,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	client := redisclient.NewClient(redisClient)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisURI, err)
	}

	logging.Logger.Info("connected to Redis", zap.String("uri", cfg.RedisURI))
	return client, nil
}

// InitPostgres opens the pool used to reach the coupon ledger procedures
func InitPostgres(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_DSN: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	logging.Logger.Info("connected to Postgres")
	return pool, nil
}

// maskMongoURI masks credentials in a MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	return "mongodb://****:****@" + uri[at+1:]
}

// ensureAuditLogsIndex creates the audit_logs indexes that do not exist yet
func ensureAuditLogsIndex(ctx context.Context, collection *mongo.Collection) error {
	logger := logging.Logger.Named("database")

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	defer cursor.Close(ctx)

	existingIndexes := make(map[string]bool)
	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			continue
		}
		if name, ok := index["name"].(string); ok {
			existingIndexes[name] = true
		}
	}

	indexesToCreate := []mongo.IndexModel{}

	if !existingIndexes["phone_1"] {
		indexesToCreate = append(indexesToCreate, mongo.IndexModel{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName("phone_1"),
		})
	}

	if !existingIndexes["action_1_resource_1"] {
		indexesToCreate = append(indexesToCreate, mongo.IndexModel{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "resource", Value: 1}},
			Options: options.Index().SetName("action_1_resource_1"),
		})
	}

	// Keep audit logs for 1 year
	if !existingIndexes["timestamp_ttl"] {
		indexesToCreate = append(indexesToCreate, mongo.IndexModel{
			Keys: bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().
				SetName("timestamp_ttl").
				SetExpireAfterSeconds(365 * 24 * 60 * 60),
		})
	}

	for _, indexModel := range indexesToCreate {
		if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("failed to create audit_logs index: %w", err)
		}
	}

	if len(indexesToCreate) > 0 {
		logger.Info("created audit_logs collection indexes", zap.Int("count", len(indexesToCreate)))
	}
	return nil
}
