package domain

import (
	"encoding/json"
	"testing"
)

func TestNormalizeBookmarkInput(t *testing.T) {
	tests := []struct {
		name      string
		in        BookmarkInput
		wantField string
	}{
		{name: "valid", in: BookmarkInput{Title: "Go", URL: "https://go.dev"}},
		{name: "missing title", in: BookmarkInput{Title: "  ", URL: "https://go.dev"}, wantField: "title"},
		{name: "missing url", in: BookmarkInput{Title: "Go"}, wantField: "url"},
		{name: "relative url", in: BookmarkInput{Title: "Go", URL: "/docs"}, wantField: "url"},
		{name: "no host", in: BookmarkInput{Title: "Go", URL: "mailto:"}, wantField: "url"},
		{name: "bad category", in: BookmarkInput{Title: "Go", URL: "https://go.dev", CategoryID: idPtr(0)}, wantField: "category_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeBookmarkInput(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestNormalizeBookmarkInputOptionals(t *testing.T) {
	in, err := NormalizeBookmarkInput(BookmarkInput{
		Title:       " Go ",
		URL:         "https://go.dev",
		Description: strPtr(""),
		Username:    strPtr(""),
		Password:    strPtr("  s3cret "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Title != "Go" {
		t.Errorf("Title = %q, want trimmed", in.Title)
	}
	if in.Description != nil || in.Username != nil {
		t.Error("empty optionals should become absent")
	}
	if in.Password == nil || *in.Password != "  s3cret " {
		t.Errorf("Password = %v, want it stored verbatim", in.Password)
	}

	in, err = NormalizeBookmarkInput(BookmarkInput{Title: "Go", URL: "https://go.dev", Username: strPtr("   ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Username == nil || *in.Username != "   " {
		t.Errorf("Username = %v, want whitespace kept", in.Username)
	}
}

func TestValidateBookmarkPatchKeepsCredentials(t *testing.T) {
	p, err := ValidateBookmarkPatch(BookmarkPatch{Password: Some(" pw "), Username: Some("")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Password.Set || p.Password.Null || p.Password.Value != " pw " {
		t.Errorf("Password = %+v, want verbatim value", p.Password)
	}
	if !p.Username.Null {
		t.Error("empty username should clear the column")
	}
}

func TestBookmarkPatchJSON(t *testing.T) {
	var p BookmarkPatch
	if err := json.Unmarshal([]byte(`{"title":"New","description":null,"is_private":true}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !p.Title.Set || p.Title.Value != "New" {
		t.Errorf("title not set: %+v", p.Title)
	}
	if !p.Description.Set || !p.Description.Null {
		t.Errorf("description should be an explicit null: %+v", p.Description)
	}
	if p.URL.Set || p.CategoryID.Set {
		t.Error("absent fields must stay unset")
	}
	if p.Empty() {
		t.Error("patch should not be empty")
	}
	if p.Description.Ptr() != nil {
		t.Error("null optional should yield nil pointer")
	}

	p, err := ValidateBookmarkPatch(p)
	if err != nil {
		t.Fatalf("ValidateBookmarkPatch: %v", err)
	}

	var empty BookmarkPatch
	if err := json.Unmarshal([]byte(`{}`), &empty); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !empty.Empty() {
		t.Error("{} should decode to an empty patch")
	}
}

func TestValidateBookmarkPatchRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null title", `{"title":null}`},
		{"empty title", `{"title":""}`},
		{"null url", `{"url":null}`},
		{"bad url", `{"url":"nope"}`},
		{"null privacy", `{"is_private":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p BookmarkPatch
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if _, err := ValidateBookmarkPatch(p); !IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestNormalizeCategoryInput(t *testing.T) {
	in, err := NormalizeCategoryInput(CategoryInput{Name: "Work"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Color != DefaultCategoryColor {
		t.Errorf("Color = %q, want default", in.Color)
	}

	bad := []CategoryInput{
		{Name: ""},
		{Name: "Work", Color: "green"},
		{Name: "Work", Color: "#12345"},
		{Name: "Work", Emoji: strPtr("🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥🔥")},
	}
	for _, c := range bad {
		if _, err := NormalizeCategoryInput(c); !IsValidation(err) {
			t.Errorf("NormalizeCategoryInput(%+v) error = %v, want validation error", c, err)
		}
	}
}

func TestValidateCategoryPatch(t *testing.T) {
	p, err := ValidateCategoryPatch(CategoryPatch{Color: Null[string](), Emoji: Some("")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Color.Value != DefaultCategoryColor {
		t.Errorf("null color should reset to default, got %q", p.Color.Value)
	}
	if !p.Emoji.Null {
		t.Error("empty emoji should clear the column")
	}

	if _, err := ValidateCategoryPatch(CategoryPatch{Name: Some(" ")}); !IsValidation(err) {
		t.Errorf("blank name error = %v, want validation error", err)
	}
}
