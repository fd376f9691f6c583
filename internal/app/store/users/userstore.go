// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/authutil"
	"github.com/adil-N/KnowIThubv2-sub003/internal/app/system/normalize"
	"github.com/adil-N/KnowIThubv2-sub003/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New("invalid role")
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs loads multiple users by their ObjectIDs.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetByEmail looks up a user by case/diacritic-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	folded := text.Fold(email)
	if err := s.c.FindOne(ctx, bson.M{"email_ci": folded}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateInput contains the input for creating a user.
type CreateInput struct {
	FullName string
	Email    string
	Password string
	Role     string
	Status   string
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.User, error) {
	email := normalize.Email(input.Email)

	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   normalize.Name(input.FullName),
		FullNameCI: text.Fold(input.FullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		Role:       normalize.Role(input.Role),
		Status:     normalize.Status(input.Status),
	}

	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	if !models.IsValidRole(u.Role) {
		return nil, errBadRole
	}
	if u.Status != models.StatusActive && u.Status != models.StatusDisabled {
		return nil, errBadStatus
	}

	if input.Password != "" {
		hash, err := authutil.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &u, nil
}

// UserUpdate holds the fields that can be updated for a user.
type UserUpdate struct {
	FullName     string
	Email        string
	Role         string
	Status       string
	PasswordHash *string
}

// Update updates a user's fields. Returns ErrDuplicateEmail if the email
// already belongs to another user.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) error {
	email := normalize.Email(upd.Email)

	set := bson.M{
		"full_name":    normalize.Name(upd.FullName),
		"full_name_ci": text.Fold(upd.FullName),
		"email":        email,
		"email_ci":     text.Fold(email),
		"role":         normalize.Role(upd.Role),
		"status":       normalize.Status(upd.Status),
		"updated_at":   time.Now(),
	}

	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// SetStatus changes a user's status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if status != models.StatusActive && status != models.StatusDisabled {
		return errBadStatus
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}})
	return err
}

// Delete deletes a user by ID. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EmailExistsForOther checks if an email already exists for a user other
// than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email_ci": text.Fold(email),
		"_id":      bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// CountActiveAdmins returns the number of active admin or super accounts.
func (s *Store) CountActiveAdmins(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"role":   bson.M{"$in": models.AdminRoles()},
		"status": models.StatusActive,
	})
}

// Authenticate verifies an email/password pair and returns the user on
// success. Disabled accounts never authenticate.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if normalize.Status(u.Status) == models.StatusDisabled {
		return nil, mongo.ErrNoDocuments
	}
	if u.PasswordHash == nil {
		return nil, mongo.ErrNoDocuments
	}
	if !authutil.CheckPassword(*u.PasswordHash, password) {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}
