package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"github.com/albert-sebastian93/wanderlust/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPostNotFound is returned when a post lookup matches no document.
var ErrPostNotFound = errors.New("post not found")

// Client wraps the MongoDB client and database connection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName, collectionName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	collection := database.Collection(collectionName)

	return &Client{
		mongoClient: mongoClient,
		database:    database,
		collection:  collection,
	}
}

// Connect establishes connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// Ping verifies the connection is still alive; used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.Connect(ctx)
}

// InsertPost inserts a new post and returns its generated ID.
func (c *Client) InsertPost(ctx context.Context, post *domain.Post) (primitive.ObjectID, error) {
	if c.collection == nil {
		return primitive.NilObjectID, fmt.Errorf("collection not initialized")
	}

	res, err := c.collection.InsertOne(ctx, post)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert post: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)
	}
	return id, nil
}

// SavePost upserts a post. Imported posts carry a sourceUrl which is
// used as the identity; posts without one (seeded or hand-written) are
// keyed on their title so re-running an import never duplicates.
func (c *Client) SavePost(ctx context.Context, post *domain.Post) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"title": post.Title}
	if post.SourceURL != "" {
		filter = bson.M{"sourceUrl": post.SourceURL}
	}
	update := bson.M{"$set": post}
	opts := options.Update().SetUpsert(true)

	_, err := c.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// UpsertPost saves a post with the same identity rules as SavePost and
// reports whether a new document was created.
func (c *Client) UpsertPost(ctx context.Context, post *domain.Post) (bool, error) {
	if c.collection == nil {
		return false, fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"title": post.Title}
	if post.SourceURL != "" {
		filter = bson.M{"sourceUrl": post.SourceURL}
	}
	update := bson.M{"$set": post}
	opts := options.Update().SetUpsert(true)

	res, err := c.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// Drop removes the posts collection entirely.
func (c *Client) Drop(ctx context.Context) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}
	return c.collection.Drop(ctx)
}

// GetPost fetches a single post by ID.
func (c *Client) GetPost(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	var post domain.Post
	err := c.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	return &post, nil
}

// GetAllPosts fetches all posts, newest first.
func (c *Client) GetAllPosts(ctx context.Context) ([]domain.Post, error) {
	return c.findPosts(ctx, bson.M{}, options.Find().SetSort(bson.M{"timeOfPost": -1}))
}

// GetFeaturedPosts fetches posts flagged as featured, newest first.
func (c *Client) GetFeaturedPosts(ctx context.Context) ([]domain.Post, error) {
	return c.findPosts(ctx, bson.M{"isFeaturedPost": true}, options.Find().SetSort(bson.M{"timeOfPost": -1}))
}

// GetLatestPosts fetches the most recent posts, limited to the given count.
func (c *Client) GetLatestPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		return []domain.Post{}, nil
	}
	opts := options.Find().SetSort(bson.M{"timeOfPost": -1}).SetLimit(int64(limit))
	return c.findPosts(ctx, bson.M{}, opts)
}

// GetPostsByCategory fetches posts carrying the given category.
// Matching is case-insensitive so "food" finds posts tagged "Food".
func (c *Client) GetPostsByCategory(ctx context.Context, category string) ([]domain.Post, error) {
	filter := bson.M{"categories": bson.M{"$regex": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(category) + "$",
		Options: "i",
	}}}
	return c.findPosts(ctx, filter, options.Find().SetSort(bson.M{"timeOfPost": -1}))
}

// UpdatePost replaces the stored fields of an existing post.
func (c *Client) UpdatePost(ctx context.Context, id primitive.ObjectID, post *domain.Post) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	update := bson.M{"$set": bson.M{
		"title":          post.Title,
		"authorName":     post.AuthorName,
		"imageLink":      post.ImageLink,
		"categories":     post.Categories,
		"description":    post.Description,
		"isFeaturedPost": post.IsFeaturedPost,
		"timeOfPost":     post.TimeOfPost,
	}}

	res, err := c.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost removes a post by ID.
func (c *Client) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	res, err := c.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// CountPosts returns the number of posts in the collection.
func (c *Client) CountPosts(ctx context.Context) (int64, error) {
	if c.collection == nil {
		return 0, fmt.Errorf("collection not initialized")
	}
	return c.collection.CountDocuments(ctx, bson.M{})
}

// GetAllSourceURLs fetches the source URLs of all imported posts and
// returns them as a map (set). Posts without a source URL are skipped.
func (c *Client) GetAllSourceURLs(ctx context.Context) (map[string]bool, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"sourceUrl": bson.M{"$exists": true, "$ne": ""}}
	cursor, err := c.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"sourceUrl": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query source URLs: %w", err)
	}
	defer cursor.Close(ctx)

	urlSet := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			SourceURL string `bson:"sourceUrl"`
		}
		if err := cursor.Decode(&result); err != nil {
			log.Printf("Skipping undecodable source URL document: %v", err)
			continue
		}
		if result.SourceURL != "" {
			urlSet[result.SourceURL] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return urlSet, nil
}

// findPosts runs a query and decodes all matching posts.
func (c *Client) findPosts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Post, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := c.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := make([]domain.Post, 0)
	for cursor.Next(ctx) {
		var post domain.Post
		if err := cursor.Decode(&post); err != nil {
			// Documents imported outside the API (mongoimport) can carry
			// field types the Post codec rejects. Skip them, but loudly.
			log.Printf("Skipping undecodable post document: %v", err)
			continue
		}
		posts = append(posts, post)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return posts, nil
}
