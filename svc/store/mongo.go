package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/subscription"
)

// Collection names used by Mongo.
const (
	CollectionSubscriptions   = "subscriptions"
	CollectionRoleAssignments = "role_assignments"
	CollectionPlans           = "plans"
)

// Mongo is the document-store variant of Postgres. User ids are stored as
// their canonical string form.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	if db == nil {
		panic("store: mongo database cannot be nil")
	}
	return &Mongo{db: db}
}

type subscriptionDoc struct {
	UserID          string     `bson:"_id"`
	PlanID          string     `bson:"plan_id"`
	Status          string     `bson:"status"`
	TrialEndsAt     *time.Time `bson:"trial_ends_at,omitempty"`
	CanceledAt      *time.Time `bson:"canceled_at,omitempty"`
	IsMasterManaged bool       `bson:"is_master_managed"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

func (d subscriptionDoc) record() (*subscription.Record, error) {
	id, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}
	return subscriptionRow{
		UserID:          id,
		PlanID:          d.PlanID,
		Status:          d.Status,
		TrialEndsAt:     d.TrialEndsAt,
		CanceledAt:      d.CanceledAt,
		IsMasterManaged: d.IsMasterManaged,
		UpdatedAt:       d.UpdatedAt,
	}.record(), nil
}

// Get implements subscription.Store.
func (m *Mongo) Get(ctx context.Context, userID uuid.UUID) (*subscription.Record, error) {
	var doc subscriptionDoc
	err := m.db.Collection(CollectionSubscriptions).
		FindOne(ctx, bson.M{"_id": userID.String()}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, subscription.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return doc.record()
}

type assignmentDoc struct {
	UserID    string `bson:"user_id"`
	CompanyID string `bson:"company_id"`
	Role      string `bson:"role"`
}

// GetRoles implements rbac.Source.
func (m *Mongo) GetRoles(ctx context.Context, userID uuid.UUID) ([]rbac.Assignment, error) {
	cur, err := m.db.Collection(CollectionRoleAssignments).
		Find(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	var docs []assignmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	out := make([]rbac.Assignment, 0, len(docs))
	for _, d := range docs {
		out = append(out, rbac.Assignment{UserID: userID, CompanyID: d.CompanyID, Role: rbac.Role(d.Role)})
	}
	return out, nil
}

type planDoc struct {
	ID       string           `bson:"_id"`
	Name     string           `bson:"name"`
	Features []string         `bson:"features"`
	Limits   map[string]int64 `bson:"limits,omitempty"`
}

func (d planDoc) plan() subscription.Plan {
	p := subscription.Plan{ID: d.ID, Name: d.Name, Features: d.Features}
	if len(d.Limits) > 0 {
		p.Limits = make(map[limits.Resource]int64, len(d.Limits))
		for k, v := range d.Limits {
			p.Limits[limits.Resource(k)] = v
		}
	}
	return p
}

// GetPlan implements subscription.PlanReader.
func (m *Mongo) GetPlan(ctx context.Context, planID string) (*subscription.Plan, error) {
	var doc planDoc
	err := m.db.Collection(CollectionPlans).FindOne(ctx, bson.M{"_id": planID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, subscription.ErrPlanNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	p := doc.plan()
	return &p, nil
}

// Load implements subscription.PlansListSource.
func (m *Mongo) Load(ctx context.Context) (map[string]subscription.Plan, error) {
	cur, err := m.db.Collection(CollectionPlans).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Join(subscription.ErrFailedToLoadPlans, err)
	}
	var docs []planDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Join(subscription.ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]subscription.Plan, len(docs))
	for _, d := range docs {
		plans[d.ID] = d.plan()
	}
	if err := subscription.ValidatePlans(plans); err != nil {
		return nil, err
	}
	return plans, nil
}

var countCollections = map[limits.Resource]string{
	limits.ResourceDashboards:  "dashboards",
	limits.ResourceUsers:       "company_users",
	limits.ResourceCredentials: "credentials",
}

// Counters returns a limits registry counting documents per company.
func (m *Mongo) Counters() limits.CounterRegistry {
	reg := limits.NewRegistry()
	for res, coll := range countCollections {
		reg.Register(res, func(ctx context.Context, companyID string) (int64, error) {
			n, err := m.db.Collection(coll).CountDocuments(ctx, bson.M{"company_id": companyID})
			if err != nil {
				return 0, errors.Join(ErrQueryFailed, err)
			}
			return n, nil
		})
	}
	return reg
}
