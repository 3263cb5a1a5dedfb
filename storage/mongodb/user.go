package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var userSortFields = map[string]string{
	"name":       "name",
	"username":   "username",
	"email":      "email",
	"is_active":  "is_active",
	"created_at": "created_at",
	"last_login": "last_login",
}

type userDoc struct {
	ID                  string     `bson:"_id"`
	Name                string     `bson:"name"`
	Username            string     `bson:"username"`
	Email               string     `bson:"email"`
	IsActive            bool       `bson:"is_active"`
	Roles               []string   `bson:"roles"`
	PasswordHash        []byte     `bson:"password_hash"`
	FailedLoginAttempts int        `bson:"failed_login_attempts"`
	LockedUntil         *time.Time `bson:"locked_until"`
	CreatedAt           time.Time  `bson:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at"`
	LastLogin           *time.Time `bson:"last_login"`
}

func toUserDoc(usr user.User) userDoc {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	return userDoc{
		ID:                  usr.ID,
		Name:                usr.Name,
		Username:            usr.Username,
		Email:               usr.Email,
		IsActive:            usr.IsActive,
		Roles:               roles,
		PasswordHash:        usr.PasswordHash,
		FailedLoginAttempts: usr.FailedLoginAttempts,
		LockedUntil:         timePtr(usr.LockedUntil),
		CreatedAt:           usr.CreatedAt.UTC(),
		UpdatedAt:           usr.UpdatedAt.UTC(),
		LastLogin:           timePtr(usr.LastLogin),
	}
}

func (d userDoc) toUser() user.User {
	return user.User{
		ID:                  d.ID,
		Name:                d.Name,
		Username:            d.Username,
		Email:               d.Email,
		IsActive:            d.IsActive,
		Roles:               d.Roles,
		PasswordHash:        d.PasswordHash,
		FailedLoginAttempts: d.FailedLoginAttempts,
		LockedUntil:         null.TimeFromPtr(d.LockedUntil),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		LastLogin:           null.TimeFromPtr(d.LastLogin),
	}
}

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{coll: db.collection(usersCollection)}
}

func (repo *userRepository) duplicateErr(err error, msg string) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "email_unique") {
			return user.ErrEmailExists
		}
		return user.ErrUsernameExists
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded = append(excluded, u.ID)
	}

	check := func(field, value string, errExists error) error {
		if value == "" {
			return nil
		}
		filter := bson.M{field: value}
		if len(excluded) > 0 {
			filter["_id"] = bson.M{"$nin": excluded}
		}
		n, err := repo.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
		if err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
		if n > 0 {
			return errExists
		}
		return nil
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	if _, err := repo.coll.InsertOne(ctx, toUserDoc(usr)); err != nil {
		return user.User{}, repo.duplicateErr(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	query := bson.M{}
	if filter != nil {
		if filter.Search != "" {
			re := containsFold(filter.Search)
			query["$or"] = bson.A{bson.M{"name": re}, bson.M{"username": re}, bson.M{"email": re}}
		}
		if len(filter.Roles) > 0 {
			prefixes := make(bson.A, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				prefixes = append(prefixes, prefixFold(role))
			}
			query["roles"] = bson.M{"$in": prefixes}
		}
		if filter.IsActive != nil {
			query["is_active"] = *filter.IsActive
		}
		created := bson.M{}
		if !filter.CreatedFrom.IsZero() {
			created["$gte"] = filter.CreatedFrom.UTC()
		}
		if !filter.CreatedTo.IsZero() {
			created["$lte"] = filter.CreatedTo.UTC()
		}
		if len(created) > 0 {
			query["created_at"] = created
		}
	}

	opts := options.Find().SetSort(sortBy(ordering, userSortFields, bson.D{{Key: "created_at", Value: -1}}))
	cur, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding users")
	}
	var docs []userDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	users := make([]user.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toUser())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var query bson.M
	switch {
	case filter.ID != "":
		query = bson.M{"_id": filter.ID}
	case filter.Username != "":
		query = bson.M{"username": filter.Username}
	case filter.Email != "":
		query = bson.M{"email": filter.Email}
	case filter.UsernameOrEmail != "":
		query = bson.M{"$or": bson.A{
			bson.M{"username": filter.UsernameOrEmail},
			bson.M{"email": filter.UsernameOrEmail},
		}}
	default:
		return user.User{}, user.ErrNotFound
	}

	var doc userDoc
	if err := repo.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return doc.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	doc := toUserDoc(usr)
	res, err := repo.coll.UpdateByID(ctx, usr.ID, bson.M{"$set": bson.M{
		"name":                  doc.Name,
		"username":              doc.Username,
		"email":                 doc.Email,
		"is_active":             doc.IsActive,
		"roles":                 doc.Roles,
		"password_hash":         doc.PasswordHash,
		"failed_login_attempts": doc.FailedLoginAttempts,
		"locked_until":          doc.LockedUntil,
		"updated_at":            doc.UpdatedAt,
		"last_login":            doc.LastLogin,
	}})
	if err != nil {
		return user.User{}, repo.duplicateErr(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(res.DeletedCount), nil
}
