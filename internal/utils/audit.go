package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/logging"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Phone      string             `bson:"phone" json:"phone"`
	Action     string             `bson:"action" json:"action"`
	Resource   string             `bson:"resource" json:"resource"`
	ResourceID string             `bson:"resource_id" json:"resource_id"`
	IPAddress  string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID  string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata   map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Audit constants
const (
	AuditActionCreate   = "CREATE"
	AuditActionVerify   = "VERIFY"
	AuditActionTransfer = "TRANSFER"
	AuditActionLogin    = "LOGIN"

	AuditResourceSignup = "signup"
	AuditResourceCoupon = "coupon"
	AuditResourceWallet = "wallet"
)

// AuditCollection is the part of *mongo.Collection the audit worker writes to
type AuditCollection interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// AuditWorker writes audit logs asynchronously in batches
type AuditWorker struct {
	collection    AuditCollection
	auditChan     chan AuditLog
	workers       int
	batchSize     int
	flushInterval time.Duration
	logger        *logging.SafeLogger
	wg            sync.WaitGroup
	stopOnce      sync.Once
	mu            sync.RWMutex
	stopped       bool
}

// NewAuditWorker creates a worker pool writing to collection. Call Start before logging.
func NewAuditWorker(collection AuditCollection, workers, bufferSize int, logger *logging.SafeLogger) *AuditWorker {
	if logger == nil {
		logger = logging.Logger
	}
	if workers < 1 {
		workers = 1
	}
	return &AuditWorker{
		collection:    collection,
		auditChan:     make(chan AuditLog, bufferSize),
		workers:       workers,
		batchSize:     100,
		flushInterval: 100 * time.Millisecond,
		logger:        logger,
	}
}

// Start starts the audit worker pool
func (aw *AuditWorker) Start() {
	aw.wg.Add(aw.workers)
	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	aw.logger.Info("audit worker started",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

func (aw *AuditWorker) processAuditLogs() {
	batchTicker := time.NewTicker(aw.flushInterval)
	monitorTicker := time.NewTicker(30 * time.Second)
	defer batchTicker.Stop()
	defer monitorTicker.Stop()

	var batch []AuditLog

	for {
		select {
		case auditLog, ok := <-aw.auditChan:
			if !ok {
				if len(batch) > 0 {
					aw.flushBatch(batch)
				}
				return
			}
			batch = append(batch, auditLog)

			if len(batch) >= aw.batchSize {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		case <-batchTicker.C:
			if len(batch) > 0 {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		case <-monitorTicker.C:
			aw.checkBufferUsage()
		}
	}
}

// flushBatch writes a batch with one unordered bulk insert
func (aw *AuditWorker) flushBatch(batch []AuditLog) {
	if len(batch) == 0 {
		return
	}

	operations := make([]mongo.WriteModel, 0, len(batch))
	for _, log := range batch {
		operations = append(operations, mongo.NewInsertOneModel().SetDocument(log))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := aw.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false))
	if err != nil {
		aw.logger.Error("failed to insert audit log batch",
			zap.Error(err),
			zap.Int("batch_size", len(batch)))
		return
	}

	aw.logger.Debug("audit log batch inserted",
		zap.Int64("inserted", result.InsertedCount),
		zap.Int("batch_size", len(batch)))
}

// LogAuditEvent queues entry without blocking. When the buffer is full, or the
// worker has been stopped, the entry is written synchronously.
func (aw *AuditWorker) LogAuditEvent(ctx context.Context, entry AuditLog) error {
	entry = withRequestFields(ctx, entry)
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	aw.mu.RLock()
	if !aw.stopped {
		select {
		case aw.auditChan <- entry:
			aw.mu.RUnlock()
			return nil
		default:
			aw.logger.Warn("audit channel full, falling back to synchronous logging",
				zap.String("action", entry.Action))
		}
	}
	aw.mu.RUnlock()

	return aw.logSync(ctx, entry)
}

func (aw *AuditWorker) logSync(ctx context.Context, entry AuditLog) error {
	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := aw.collection.InsertOne(dbCtx, entry); err != nil {
		aw.logger.Error("failed to insert audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// Stop drains the queue and waits for the workers. It is safe to call more than once.
func (aw *AuditWorker) Stop() {
	if aw == nil {
		return
	}
	aw.stopOnce.Do(func() {
		aw.mu.Lock()
		aw.stopped = true
		close(aw.auditChan)
		aw.mu.Unlock()
		aw.wg.Wait()
	})
}

func (aw *AuditWorker) checkBufferUsage() {
	used := len(aw.auditChan)
	capacity := cap(aw.auditChan)
	if capacity == 0 {
		return
	}

	usage := float64(used) / float64(capacity) * 100
	if usage > 80 {
		aw.logger.Warn("high audit buffer usage detected",
			zap.Int("current_usage", used),
			zap.Int("buffer_capacity", capacity),
			zap.Float64("usage_percentage", usage))
	}
}

// GetAuditWorkerStats returns current audit worker statistics
func (aw *AuditWorker) GetAuditWorkerStats() map[string]interface{} {
	if aw == nil {
		return map[string]interface{}{
			"status": "not_initialized",
		}
	}

	return map[string]interface{}{
		"status":           "running",
		"workers":          aw.workers,
		"buffer_capacity":  cap(aw.auditChan),
		"buffer_usage":     len(aw.auditChan),
		"buffer_available": cap(aw.auditChan) - len(aw.auditChan),
	}
}

// AuditFromGin fills the request fields of entry from a gin context
func AuditFromGin(c *gin.Context, entry AuditLog) AuditLog {
	entry.IPAddress = c.ClientIP()
	entry.UserAgent = c.GetHeader("User-Agent")
	entry.RequestID = c.GetString("request_id")
	if entry.RequestID == "" {
		entry.RequestID = c.GetHeader("X-Request-ID")
	}
	return entry
}

type auditRequestKey struct{}

// WithAuditRequest returns the request context of c carrying the caller's
// address, user agent and request id for audit entries logged further down
func WithAuditRequest(c *gin.Context) context.Context {
	return context.WithValue(c.Request.Context(), auditRequestKey{}, AuditFromGin(c, AuditLog{}))
}

func withRequestFields(ctx context.Context, entry AuditLog) AuditLog {
	if ctx == nil {
		return entry
	}
	req, ok := ctx.Value(auditRequestKey{}).(AuditLog)
	if !ok {
		return entry
	}
	if entry.IPAddress == "" {
		entry.IPAddress = req.IPAddress
	}
	if entry.UserAgent == "" {
		entry.UserAgent = req.UserAgent
	}
	if entry.RequestID == "" {
		entry.RequestID = req.RequestID
	}
	return entry
}

// SanitizeAuditData removes sensitive information from audit data
func SanitizeAuditData(data interface{}) interface{} {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return data
	}

	var sanitized interface{}
	if err := json.Unmarshal(jsonData, &sanitized); err != nil {
		return data
	}

	sanitizeMap(sanitized)
	return sanitized
}

func sanitizeMap(data interface{}) {
	switch v := data.(type) {
	case map[string]interface{}:
		for _, field := range []string{"pin", "confirm_pin", "pin_hash", "token", "registration_token", "code"} {
			if _, exists := v[field]; exists {
				v[field] = "[REDACTED]"
			}
		}
		for _, value := range v {
			sanitizeMap(value)
		}
	case []interface{}:
		for _, item := range v {
			sanitizeMap(item)
		}
	}
}
