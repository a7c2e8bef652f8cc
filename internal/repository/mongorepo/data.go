package mongorepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

type dataDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	models.ResearchData `bson:",inline"`
}

func (d dataDoc) model() models.ResearchData {
	m := d.ResearchData
	m.ID = d.ID.Hex()
	m.User = normalizeMap(m.User)
	m.Detail = normalizeMap(m.Detail)
	return m
}

type DataRepo struct {
	coll *mongo.Collection
}

func (r *DataRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: ascending("research_id")},
		{Keys: ascending("user.username")},
		{Keys: bson.D{{Key: "research_id", Value: 1}, {Key: "created_time", Value: 1}}},
	})
	return err
}

func (r *DataRepo) Create(ctx context.Context, d *models.ResearchData) (string, error) {
	res, err := r.coll.InsertOne(ctx, dataDoc{ResearchData: *d})
	if err != nil {
		return "", err
	}
	return insertedID(res), nil
}

func (r *DataRepo) Find(ctx context.Context, filter models.DataFilter) ([]models.ResearchData, error) {
	cur, err := r.coll.Find(ctx, filterDoc(filter), options.Find().SetSort(ascending("created_time")))
	if err != nil {
		return nil, err
	}
	var docs []dataDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.ResearchData, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *DataRepo) CountByResearch(ctx context.Context, researchID string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"research_id": researchID})
	return int(n), err
}

func filterDoc(f models.DataFilter) bson.M {
	q := bson.M{}
	if f.ResearchID != "" {
		q["research_id"] = f.ResearchID
	}
	if f.Username != "" {
		q["user.username"] = f.Username
	}
	return q
}
