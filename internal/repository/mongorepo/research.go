package mongorepo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

type researchDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	models.Research `bson:",inline"`
}

func (d researchDoc) model() models.Research {
	r := d.Research
	r.ID = d.ID.Hex()
	return r
}

type ResearchRepo struct {
	coll *mongo.Collection
}

func (r *ResearchRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: ascending("created_time")})
	return err
}

func (r *ResearchRepo) Create(ctx context.Context, research *models.Research) (string, error) {
	res, err := r.coll.InsertOne(ctx, researchDoc{Research: *research})
	if err != nil {
		return "", err
	}
	return insertedID(res), nil
}

func (r *ResearchRepo) FindAll(ctx context.Context) ([]models.Research, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_time", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []researchDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Research, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *ResearchRepo) FindByID(ctx context.Context, id string) (*models.Research, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	var doc researchDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	research := doc.model()
	return &research, nil
}

func (r *ResearchRepo) Update(ctx context.Context, id string, research *models.Research) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": research})
	return err
}

func (r *ResearchRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
