package query

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	collectionAccounts     = "accounts"
	collectionCustomers    = "customers"
	collectionTransactions = "transactions"
)

// MongoStore implements Store over three read-only collections.
type MongoStore struct {
	accounts     *mongo.Collection
	customers    *mongo.Collection
	transactions *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) (*MongoStore, error) {
	if db == nil {
		return nil, errors.New("mongo database is required")
	}
	return &MongoStore{
		accounts:     db.Collection(collectionAccounts),
		customers:    db.Collection(collectionCustomers),
		transactions: db.Collection(collectionTransactions),
	}, nil
}

/* ------------------------------- accounts ------------------------------- */

func (m *MongoStore) AccountByID(ctx context.Context, accountID int64) (*Account, error) {
	var acc Account
	err := m.accounts.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account %d: %w", accountID, err)
	}
	return &acc, nil
}

func (m *MongoStore) AccountsByProduct(ctx context.Context, product string) ([]Account, error) {
	return m.findAccounts(ctx, bson.M{"products": product})
}

func (m *MongoStore) AccountsOverLimit(ctx context.Context, threshold int64) ([]Account, error) {
	return m.findAccounts(ctx, bson.M{"limit": bson.M{"$gt": threshold}})
}

func (m *MongoStore) AccountIDs(ctx context.Context) ([]int64, error) {
	accounts, err := m.findAccounts(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(accounts))
	for _, acc := range accounts {
		ids = append(ids, acc.AccountID)
	}
	return ids, nil
}

func (m *MongoStore) AccountIDsByCustomerID(ctx context.Context, customerID int64) ([]int64, error) {
	accounts, err := m.findAccounts(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(accounts))
	for _, acc := range accounts {
		ids = append(ids, acc.AccountID)
	}
	return ids, nil
}

func (m *MongoStore) findAccounts(ctx context.Context, filter bson.M) ([]Account, error) {
	cur, err := m.accounts.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	var accounts []Account
	if err := cur.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

/* ------------------------------- customers ------------------------------ */

func (m *MongoStore) CustomerByUsername(ctx context.Context, username string) (*Customer, error) {
	return m.findOneCustomer(ctx, bson.M{"username": username})
}

func (m *MongoStore) CustomerByNameOrUsername(ctx context.Context, identifier string) (*Customer, error) {
	return m.findOneCustomer(ctx, bson.M{"$or": bson.A{
		bson.M{"name": identifier},
		bson.M{"username": identifier},
	}})
}

func (m *MongoStore) CustomersByEmailDomain(ctx context.Context, domain string) ([]Customer, error) {
	pattern := fmt.Sprintf("@%s$", regexp.QuoteMeta(domain))
	return m.findCustomers(ctx, bson.M{"email": bson.M{"$regex": pattern}})
}

func (m *MongoStore) CustomersByAccountID(ctx context.Context, accountID int64) ([]Customer, error) {
	return m.findCustomers(ctx, bson.M{"accounts": accountID})
}

func (m *MongoStore) CustomersByBirthdateRange(ctx context.Context, from, to time.Time) ([]Customer, error) {
	return m.findCustomers(ctx, bson.M{"birthdate": bson.M{"$gte": from, "$lt": to}})
}

func (m *MongoStore) Customers(ctx context.Context) ([]Customer, error) {
	return m.findCustomers(ctx, bson.M{})
}

func (m *MongoStore) findOneCustomer(ctx context.Context, filter bson.M) (*Customer, error) {
	var cust Customer
	err := m.customers.FindOne(ctx, filter).Decode(&cust)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &cust, nil
}

func (m *MongoStore) findCustomers(ctx context.Context, filter bson.M) ([]Customer, error) {
	cur, err := m.customers.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	var customers []Customer
	if err := cur.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	return customers, nil
}

/* ------------------------------ transactions ---------------------------- */

// BucketsByAccountID fetches transaction buckets. A windowed fetch narrows
// with $elemMatch on record dates rather than the bucket's own declared
// range; the caller re-verifies every record regardless.
func (m *MongoStore) BucketsByAccountID(ctx context.Context, accountID int64, window *Window) ([]Bucket, error) {
	filter := bson.M{"account_id": accountID}
	if !window.IsZero() {
		dateCond := bson.M{}
		if window.Start != nil {
			dateCond["$gte"] = *window.Start
		}
		if window.End != nil {
			dateCond["$lte"] = *window.End
		}
		filter["transactions"] = bson.M{"$elemMatch": bson.M{"date": dateCond}}
	}

	cur, err := m.transactions.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find transaction buckets: %w", err)
	}
	var buckets []Bucket
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("decode transaction buckets: %w", err)
	}
	return buckets, nil
}
