package store

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/taskdag/pkg/command"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/task"
)

// MongoOptions configures a [MongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// SetDefaults fills in the database and collection names.
func (o *MongoOptions) SetDefaults() {
	if o.Database == "" {
		o.Database = "taskdag"
	}
	if o.Collection == "" {
		o.Collection = "tasks"
	}
}

// taskDocument is the stored shape of one task.
type taskDocument struct {
	ID           int    `bson:"_id"`
	Position     int    `bson:"position"`
	Text         string `bson:"text"`
	Completed    bool   `bson:"completed"`
	SuccessorIDs []int  `bson:"successor_ids"`
}

type focusDocument struct {
	ID     string `bson:"_id"`
	TaskID int    `bson:"task_id"`
}

const focusKey = "focus"

// MongoStore keeps one document per task in a MongoDB collection. Successor
// edits use $addToSet and $pull so concurrent writers never duplicate or
// resurrect an edge. The focus lives in a sibling "<collection>_focus"
// collection.
type MongoStore struct {
	client *mongo.Client
	tasks  *mongo.Collection
	focus  *mongo.Collection
	logger *log.Logger
}

// OpenMongo connects to MongoDB and verifies the connection.
func OpenMongo(ctx context.Context, opts MongoOptions, logger *log.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	opts.SetDefaults()
	if opts.URI == "" {
		return nil, dagerrors.New(dagerrors.ErrCodeInvalidConfig, "mongo uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "ping mongo")
	}

	db := client.Database(opts.Database)
	logger.Debug("connected to mongo", "database", opts.Database, "collection", opts.Collection)
	return &MongoStore{
		client: client,
		tasks:  db.Collection(opts.Collection),
		focus:  db.Collection(opts.Collection + "_focus"),
		logger: logger,
	}, nil
}

// Load returns all tasks ordered by position.
func (s *MongoStore) Load(ctx context.Context) ([]task.Record, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.tasks.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "find tasks")
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "decode tasks")
	}

	records := make([]task.Record, len(docs))
	for i, d := range docs {
		succ := d.SuccessorIDs
		if succ == nil {
			succ = []int{}
		}
		records[i] = task.Record{ID: d.ID, Text: d.Text, Completed: d.Completed, SuccessorIDs: succ}
	}
	return records, nil
}

// Apply executes cmd.
func (s *MongoStore) Apply(ctx context.Context, cmd command.Command) error {
	if err := checkCommand(cmd); err != nil {
		return err
	}

	var err error
	switch cmd.Kind {
	case command.KindFocusTask:
		if err := s.requireTasks(ctx, cmd.TaskID); err != nil {
			return err
		}
		_, err = s.focus.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: focusKey}},
			bson.D{{Key: "$set", Value: bson.D{{Key: "task_id", Value: cmd.TaskID}}}},
			options.Update().SetUpsert(true))

	case command.KindAddDependency:
		if err := s.requireTasks(ctx, cmd.FromID, cmd.ToID); err != nil {
			return err
		}
		_, err = s.tasks.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: cmd.FromID}},
			bson.D{{Key: "$addToSet", Value: bson.D{{Key: "successor_ids", Value: cmd.ToID}}}})

	case command.KindRemoveDependency:
		if err := s.requireTasks(ctx, cmd.FromID, cmd.ToID); err != nil {
			return err
		}
		_, err = s.tasks.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: cmd.FromID}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "successor_ids", Value: cmd.ToID}}}})
	}
	if err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "apply %s", cmd)
	}
	s.logger.Debug("applied command", "command", cmd.String())
	return nil
}

func (s *MongoStore) requireTasks(ctx context.Context, ids ...int) error {
	for _, id := range ids {
		n, err := s.tasks.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "look up task %d", id)
		}
		if n == 0 {
			return notFound(id)
		}
	}
	return nil
}

// Focus returns the focused task id.
func (s *MongoStore) Focus(ctx context.Context) (int, bool, error) {
	var doc focusDocument
	err := s.focus.FindOne(ctx, bson.D{{Key: "_id", Value: focusKey}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "find focus")
	}
	return doc.TaskID, true, nil
}

// Replace deletes every task and inserts records in order.
func (s *MongoStore) Replace(ctx context.Context, records []task.Record) error {
	if _, err := s.tasks.DeleteMany(ctx, bson.D{}); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "clear tasks")
	}
	if _, err := s.focus.DeleteMany(ctx, bson.D{}); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "clear focus")
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]any, len(records))
	for i, r := range records {
		succ := r.SuccessorIDs
		if succ == nil {
			succ = []int{}
		}
		docs[i] = taskDocument{ID: r.ID, Position: i, Text: r.Text, Completed: r.Completed, SuccessorIDs: succ}
	}
	if _, err := s.tasks.InsertMany(ctx, docs); err != nil {
		return dagerrors.Wrap(dagerrors.ErrCodeStorage, err, "insert tasks")
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
