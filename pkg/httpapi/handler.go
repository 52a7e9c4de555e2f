// Package httpapi exposes the posts REST API consumed by the frontend.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/albert-sebastian93/wanderlust/pkg/db"
	"github.com/albert-sebastian93/wanderlust/pkg/domain"
	"github.com/albert-sebastian93/wanderlust/pkg/metrics"
	"github.com/albert-sebastian93/wanderlust/pkg/search"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxBodyBytes caps request bodies; post payloads are small.
const maxBodyBytes = 1 << 20 // 1 MiB

// maxListLimit caps client-supplied ?limit= values.
const maxListLimit = 50

// defaultSearchLimit is used when a search request carries no limit.
const defaultSearchLimit = 10

// PostStore is the storage surface the API needs. *db.Client satisfies it.
type PostStore interface {
	GetAllPosts(ctx context.Context) ([]domain.Post, error)
	GetFeaturedPosts(ctx context.Context) ([]domain.Post, error)
	GetLatestPosts(ctx context.Context, limit int) ([]domain.Post, error)
	GetPostsByCategory(ctx context.Context, category string) ([]domain.Post, error)
	GetPost(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	InsertPost(ctx context.Context, post *domain.Post) (primitive.ObjectID, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, post *domain.Post) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	Ping(ctx context.Context) error
}

// Searcher is the search surface the API needs. *search.Index satisfies it.
type Searcher interface {
	Search(query string, limit int) []search.ScoredPost
	MarkStale()
	RefreshIfStale(ctx context.Context) error
}

// Config carries the handler settings that come from the environment.
type Config struct {
	// LatestPostsLimit is the default row count for /api/posts/latest.
	LatestPostsLimit int
}

// Handler bundles the HTTP endpoints for the posts API.
type Handler struct {
	store    PostStore
	searcher Searcher
	cfg      Config
}

// NewHandler creates the API handler.
func NewHandler(store PostStore, searcher Searcher, cfg Config) *Handler {
	if cfg.LatestPostsLimit <= 0 {
		cfg.LatestPostsLimit = 5
	}
	return &Handler{store: store, searcher: searcher, cfg: cfg}
}

// Register mounts all routes on the router. Fixed paths are registered
// before the {id} catch-all so "featured" is never parsed as an id.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", h.createPost).Methods(http.MethodPost)
	api.HandleFunc("/posts/featured", h.featuredPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/latest", h.latestPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/search", h.searchPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/categories/{category}", h.postsByCategory).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", h.getPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", h.updatePost).Methods(http.MethodPatch)
	api.HandleFunc("/posts/{id}", h.deletePost).Methods(http.MethodDelete)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.GetAllPosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) featuredPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.GetFeaturedPosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load featured posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) latestPosts(w http.ResponseWriter, r *http.Request) {
	limit := h.cfg.LatestPostsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}

	posts, err := h.store.GetLatestPosts(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load latest posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) postsByCategory(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	posts, err := h.store.GetPostsByCategory(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load posts for category")
		return
	}
	// Unknown category is not an error: the frontend renders an empty list.
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) searchPosts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}

	// Writes through the API mark the index stale; pick them up here so
	// a search that follows a write sees the new post. A failed refresh
	// still serves results from the previous build.
	if err := h.searcher.RefreshIfStale(r.Context()); err != nil {
		log.Printf("Search index refresh failed: %v", err)
	}

	results := h.searcher.Search(query, limit)
	metrics.RecordSearchQuery(len(results))
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r)
	if !ok {
		return
	}

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var post domain.Post
	if err := decodeJSON(w, r, &post); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The creation time is server-assigned; clients cannot backdate posts.
	post.ID = primitive.NilObjectID
	post.TimeOfPost = time.Now().UTC()

	if err := post.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.store.InsertPost(r.Context(), &post)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store post")
		return
	}
	post.ID = id

	h.searcher.MarkStale()
	writeJSON(w, http.StatusCreated, &post)
}

// postPatch carries the mutable fields of a partial update. Pointers
// distinguish "absent" from "set to zero value".
type postPatch struct {
	Title          *string   `json:"title"`
	AuthorName     *string   `json:"authorName"`
	ImageLink      *string   `json:"imageLink"`
	Categories     *[]string `json:"categories"`
	Description    *string   `json:"description"`
	IsFeaturedPost *bool     `json:"isFeaturedPost"`
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r)
	if !ok {
		return
	}

	var patch postPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load post")
		return
	}

	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.AuthorName != nil {
		post.AuthorName = *patch.AuthorName
	}
	if patch.ImageLink != nil {
		post.ImageLink = *patch.ImageLink
	}
	if patch.Categories != nil {
		post.Categories = *patch.Categories
	}
	if patch.Description != nil {
		post.Description = *patch.Description
	}
	if patch.IsFeaturedPost != nil {
		post.IsFeaturedPost = *patch.IsFeaturedPost
	}

	if err := post.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdatePost(r.Context(), id, post); err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	h.searcher.MarkStale()
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	h.searcher.MarkStale()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status": "ok",
		"mongo":  "up",
	}
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["mongo"] = "down"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}

// parseObjectID parses the {id} path variable and writes a 400 when it
// is not a valid ObjectID hex string.
func parseObjectID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid post id %q", raw))
		return primitive.NilObjectID, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
