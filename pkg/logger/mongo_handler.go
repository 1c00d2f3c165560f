package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entry is one log line as stored in MongoDB.
type Entry struct {
	At        time.Time `bson:"at"`
	Level     string    `bson:"level"`
	Message   string    `bson:"message"`
	RequestID string    `bson:"request_id,omitempty"`
	UserID    any       `bson:"user_id,omitempty"`
	Fields    bson.M    `bson:"fields,omitempty"`
}

type inserter interface {
	InsertOne(ctx context.Context, doc interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoHandler ships Info and above to a collection from one goroutine.
// When the backlog is full new entries are dropped.
type MongoHandler struct {
	shared *mongoShipper
	attrs  []slog.Attr
	group  string
}

type mongoShipper struct {
	col     inserter
	client  *mongo.Client
	entries chan Entry
	stopped chan struct{}
}

// NewMongoHandler connects to uri and logs into db.collection. Close
// disconnects.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo ping: %w", err)
	}

	h := newMongoHandler(client.Database(db).Collection(collection))
	h.shared.client = client
	return h, nil
}

func newMongoHandler(col inserter) *MongoHandler {
	s := &mongoShipper{col: col, entries: make(chan Entry, 1024), stopped: make(chan struct{})}
	go s.ship()
	return &MongoHandler{shared: s}
}

func (s *mongoShipper) ship() {
	defer close(s.stopped)
	for e := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_, _ = s.col.InsertOne(ctx, e)
		cancel()
	}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelInfo }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{At: r.Time, Level: r.Level.String(), Message: r.Message, Fields: bson.M{}}
	collect := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			e.RequestID = a.Value.String()
		case "user_id":
			e.UserID = a.Value.Any()
		default:
			e.Fields[h.group+a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	select {
	case h.shared.entries <- e:
	default:
	}
	return nil
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MongoHandler{shared: h.shared, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...), group: h.group}
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	return &MongoHandler{shared: h.shared, attrs: h.attrs, group: h.group + name + "."}
}

// Close writes out the backlog and disconnects. Call it once.
func (h *MongoHandler) Close() {
	close(h.shared.entries)
	<-h.shared.stopped
	if h.shared.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.shared.client.Disconnect(ctx)
	}
}

// teeHandler sends every record to each handler that accepts its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
