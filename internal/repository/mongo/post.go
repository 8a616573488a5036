package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Slug       string             `bson:"slug"`
	Excerpt    string             `bson:"excerpt"`
	Content    string             `bson:"content,omitempty"`
	CoverImage string             `bson:"coverImage,omitempty"`
	Author     string             `bson:"author"`
	UserID     primitive.ObjectID `bson:"userId"`
	Status     string             `bson:"status"`
	Tags       []string           `bson:"tags"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *postDoc) toDomain() *domain.Post {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Post{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Slug:       d.Slug,
		Excerpt:    d.Excerpt,
		Content:    d.Content,
		CoverImage: d.CoverImage,
		Author:     d.Author,
		UserID:     d.UserID.Hex(),
		Status:     domain.PostStatus(d.Status),
		Tags:       tags,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (d *postDoc) toSummary() domain.PostSummary {
	p := d.toDomain()
	return domain.PostSummary{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    p.Excerpt,
		CoverImage: p.CoverImage,
		Author:     p.Author,
		UserID:     p.UserID,
		Status:     p.Status,
		Tags:       p.Tags,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// PostRepository implements domain.PostRepository on the posts collection.
type PostRepository struct {
	coll *mongo.Collection
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	userID, err := primitive.ObjectIDFromHex(post.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", domain.ErrInvalidInput)
	}
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := postDoc{
		ID:         primitive.NewObjectID(),
		Title:      post.Title,
		Slug:       post.Slug,
		Excerpt:    post.Excerpt,
		Content:    post.Content,
		CoverImage: post.CoverImage,
		Author:     post.Author,
		UserID:     userID,
		Status:     string(post.Status),
		Tags:       tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("insert post: %w", err)
	}

	post.ID = doc.ID.Hex()
	post.CreatedAt = now
	post.UpdatedAt = now
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *PostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

func (r *PostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.PostSummary, error) {
	query, ok := buildPostFilter(filter)
	if !ok {
		return []domain.PostSummary{}, nil
	}

	opts := options.Find().
		SetProjection(bson.M{"content": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := []domain.PostSummary{}
	for cur.Next(ctx) {
		var doc postDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		posts = append(posts, doc.toSummary())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context, filter domain.PostFilter) (int, error) {
	query, ok := buildPostFilter(filter)
	if !ok {
		return 0, nil
	}
	n, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return int(n), nil
}

func (r *PostRepository) DistinctTags(ctx context.Context, status domain.PostStatus) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "tags", bson.M{"status": string(status)})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if tag, ok := v.(string); ok {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags, nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	oid, err := primitive.ObjectIDFromHex(post.ID)
	if err != nil {
		return domain.ErrNotFound
	}
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":      post.Title,
		"excerpt":    post.Excerpt,
		"content":    post.Content,
		"coverImage": post.CoverImage,
		"author":     post.Author,
		"status":     string(post.Status),
		"tags":       tags,
		"updatedAt":  now,
	}})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	post.UpdatedAt = now
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostRepository) findOne(ctx context.Context, filter bson.M) (*domain.Post, error) {
	var doc postDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return doc.toDomain(), nil
}

// buildPostFilter returns false when the filter can match nothing, e.g. a
// user id that is not an ObjectID.
func buildPostFilter(f domain.PostFilter) (bson.M, bool) {
	query := bson.M{}
	if f.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(f.UserID)
		if err != nil {
			return nil, false
		}
		query["userId"] = oid
	}
	if f.Status != "" {
		query["status"] = string(f.Status)
	}
	if f.Tag != "" {
		// Matches array membership.
		query["tags"] = f.Tag
	}
	return query, true
}
