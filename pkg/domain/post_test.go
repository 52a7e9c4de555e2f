package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validPost() *Post {
	return &Post{
		Title:          "Exploring the Fjords of Norway",
		AuthorName:     "Maya Thompson",
		ImageLink:      "https://images.example.com/fjords.jpg",
		Categories:     []string{"Adventure", "Nature"},
		Description:    "A week of hiking and kayaking through western Norway.",
		IsFeaturedPost: true,
		TimeOfPost:     time.Now(),
	}
}

func TestPost_Validate_Valid(t *testing.T) {
	post := validPost()
	if err := post.Validate(); err != nil {
		t.Fatalf("Expected valid post, got error: %v", err)
	}
}

func TestPost_Validate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Post)
		want   string
	}{
		{"missing title", func(p *Post) { p.Title = "" }, "title"},
		{"whitespace title", func(p *Post) { p.Title = "   " }, "title"},
		{"missing author", func(p *Post) { p.AuthorName = "" }, "authorName"},
		{"missing description", func(p *Post) { p.Description = "" }, "description"},
		{"missing image", func(p *Post) { p.ImageLink = "" }, "imageLink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := validPost()
			tt.mutate(post)

			err := post.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, ErrInvalidPost) {
				t.Errorf("Expected ErrInvalidPost, got: %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error to mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestPost_Validate_ImageLink(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		wantErr bool
	}{
		{"https URL", "https://images.example.com/pic.jpg", false},
		{"http URL", "http://images.example.com/pic.jpg", false},
		{"relative path", "/images/pic.jpg", true},
		{"ftp scheme", "ftp://example.com/pic.jpg", true},
		{"bare word", "not-a-url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := validPost()
			post.ImageLink = tt.link

			err := post.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for imageLink %q, got nil", tt.link)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error for imageLink %q, got: %v", tt.link, err)
			}
		})
	}
}

func TestPost_Validate_Categories(t *testing.T) {
	// Duplicates collapse before the limit check
	post := validPost()
	post.Categories = []string{"Travel", "travel", " Travel ", "Food"}

	if err := post.Validate(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(post.Categories) != 2 {
		t.Fatalf("Expected 2 categories after dedupe, got %d: %v", len(post.Categories), post.Categories)
	}
	if post.Categories[0] != "Travel" || post.Categories[1] != "Food" {
		t.Errorf("Expected order preserved, got: %v", post.Categories)
	}

	// More than three distinct categories is rejected
	post = validPost()
	post.Categories = []string{"Travel", "Food", "Culture", "Nature"}

	err := post.Validate()
	if err == nil {
		t.Fatal("Expected error for too many categories, got nil")
	}
	if !errors.Is(err, ErrInvalidPost) {
		t.Errorf("Expected ErrInvalidPost, got: %v", err)
	}
}

func TestPost_HasCategory(t *testing.T) {
	post := validPost()
	post.Categories = []string{"Adventure", "Nature"}

	if !post.HasCategory("adventure") {
		t.Error("Expected case-insensitive match for 'adventure'")
	}
	if !post.HasCategory("Nature") {
		t.Error("Expected match for 'Nature'")
	}
	if post.HasCategory("Food") {
		t.Error("Did not expect match for 'Food'")
	}
}
