package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/task-manager/backend/internal/models"
)

// MongoStore handles team-board accounts and tasks in MongoDB.
// Admins and users live in separate collections.
type MongoStore struct {
	admins *mongo.Collection
	users  *mongo.Collection
	tasks  *mongo.Collection
	now    func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		admins: db.Collection("admins"),
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
		now:    time.Now,
	}
}

// EnsureIndexes enforces email uniqueness per account collection.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, col := range []*mongo.Collection{s.admins, s.users} {
		if _, err := col.Indexes().CreateOne(ctx, unique); err != nil {
			return fmt.Errorf("mongo index %s: %w", col.Name(), err)
		}
	}
	_, err := s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "adminId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo index tasks: %w", err)
	}
	return nil
}

func (s *MongoStore) accounts(role models.Role) *mongo.Collection {
	if role == models.RoleAdmin {
		return s.admins
	}
	return s.users
}

func (s *MongoStore) CreateAccount(ctx context.Context, acc *models.Account) error {
	now := s.now().UTC()
	acc.CreatedAt, acc.UpdatedAt = now, now
	res, err := s.accounts(acc.Role).InsertOne(ctx, acc)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo insert account: %w", models.ErrDuplicateEmail)
	}
	if err != nil {
		return fmt.Errorf("mongo insert account: %w", err)
	}
	acc.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) findAccount(ctx context.Context, role models.Role, filter bson.M) (*models.Account, error) {
	var acc models.Account
	err := s.accounts(role).FindOne(ctx, filter).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find account: %w", err)
	}
	acc.Role = role
	return &acc, nil
}

func (s *MongoStore) FindAccountByEmail(ctx context.Context, role models.Role, email string) (*models.Account, error) {
	return s.findAccount(ctx, role, bson.M{"email": email})
}

func (s *MongoStore) GetAccount(ctx context.Context, role models.Role, id primitive.ObjectID) (*models.Account, error) {
	return s.findAccount(ctx, role, bson.M{"_id": id})
}

func (s *MongoStore) ListUsersByAdmin(ctx context.Context, adminID primitive.ObjectID) ([]models.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := s.users.Find(ctx, bson.M{"adminId": adminID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.Account
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	for i := range users {
		users[i].Role = models.RoleUser
	}
	return users, nil
}

func (s *MongoStore) InsertAssignment(ctx context.Context, a *models.Assignment) error {
	now := s.now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	res, err := s.tasks.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("mongo insert task: %w", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func scopeFilter(scope models.AssignmentScope) bson.M {
	f := bson.M{}
	if scope.AdminID != nil {
		f["adminId"] = *scope.AdminID
	}
	if scope.UserID != nil {
		f["userId"] = *scope.UserID
	}
	return f
}

func (s *MongoStore) ListAssignments(ctx context.Context, scope models.AssignmentScope) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.tasks.Find(ctx, scopeFilter(scope), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var tasks []models.Assignment
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("mongo list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateAssignment replaces the patched fields of a task inside scope and
// returns the updated document.
func (s *MongoStore) UpdateAssignment(ctx context.Context, scope models.AssignmentScope, id primitive.ObjectID, patch models.AssignmentPatch) (*models.Assignment, error) {
	set := bson.M{"updatedAt": s.now().UTC()}
	if patch.TaskName != nil {
		set["task_name"] = *patch.TaskName
	}
	if patch.DueDate != nil {
		set["due_date"] = *patch.DueDate
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	filter := scopeFilter(scope)
	filter["_id"] = id
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a models.Assignment
	err := s.tasks.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo update task: %w", err)
	}
	return &a, nil
}

func (s *MongoStore) DeleteAssignment(ctx context.Context, scope models.AssignmentScope, id primitive.ObjectID) error {
	filter := scopeFilter(scope)
	filter["_id"] = id
	res, err := s.tasks.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("mongo delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
