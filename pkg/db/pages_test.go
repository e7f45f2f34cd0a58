package db

import (
	"context"
	"errors"
	"testing"

	"github.com/dtnitsch/mooc-renderer/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestSavePage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	tests := []struct {
		name        string
		title       models.Identifier
		text        string
		wantChanged bool
		wantRevs    int
	}{
		{
			name:        "new page",
			title:       "MOOC:Kurs",
			text:        `{"type": "unit"}`,
			wantChanged: true,
			wantRevs:    1,
		},
		{
			name:        "same content keeps revision",
			title:       "MOOC:Kurs",
			text:        `{"type": "unit"}`,
			wantChanged: false,
			wantRevs:    1,
		},
		{
			name:        "changed content adds revision",
			title:       "MOOC:Kurs",
			text:        `{"type": "unit", "children": ["intro"]}`,
			wantChanged: true,
			wantRevs:    2,
		},
		{
			name:        "subpage",
			title:       "MOOC:Kurs/intro",
			text:        `{"type": "lesson"}`,
			wantChanged: true,
			wantRevs:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revID, changed, err := db.SavePage(ctx, tt.title, tt.text)
			if err != nil {
				t.Fatalf("SavePage() failed: %v", err)
			}
			if revID <= 0 {
				t.Errorf("SavePage() revID = %d, want > 0", revID)
			}
			if changed != tt.wantChanged {
				t.Errorf("SavePage() changed = %v, want %v", changed, tt.wantChanged)
			}

			revs, err := db.RevisionCount(ctx, tt.title)
			if err != nil {
				t.Fatalf("RevisionCount() failed: %v", err)
			}
			if revs != tt.wantRevs {
				t.Errorf("RevisionCount() = %d, want %d", revs, tt.wantRevs)
			}

			text, err := db.Fetch(ctx, tt.title)
			if err != nil {
				t.Fatalf("Fetch() failed: %v", err)
			}
			if text != tt.text {
				t.Errorf("Fetch() = %q, want %q", text, tt.text)
			}
		})
	}
}

func TestSavePage_EmptyTitle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, _, err := db.SavePage(context.Background(), "", "x"); err == nil {
		t.Error("SavePage() with empty title should fail")
	}
}

func TestFetch_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Fetch(context.Background(), "MOOC:Missing")
	if !errors.Is(err, models.ErrPageNotFound) {
		t.Errorf("Fetch() error = %v, want ErrPageNotFound", err)
	}

	exists, err := models.PageExists(context.Background(), db, "MOOC:Missing")
	if err != nil || exists {
		t.Errorf("PageExists() = %v, %v, want false, nil", exists, err)
	}
}

func TestFetchRevision(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	first, _, _ := db.SavePage(ctx, "Kurs", "v1")
	_, _, _ = db.SavePage(ctx, "Kurs", "v2")

	text, err := db.FetchRevision(ctx, "Kurs", first)
	if err != nil {
		t.Fatalf("FetchRevision() failed: %v", err)
	}
	if text != "v1" {
		t.Errorf("FetchRevision() = %q, want %q", text, "v1")
	}

	if _, err := db.FetchRevision(ctx, "Other", first); !errors.Is(err, models.ErrPageNotFound) {
		t.Errorf("FetchRevision() for other page error = %v, want ErrPageNotFound", err)
	}
}

func TestListPages(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	for _, title := range []models.Identifier{"MOOC:Kurs/b", "MOOC:Kurs", "MOOC:Kurs/a", "MOOC:Other", "Kurs_1"} {
		if _, _, err := db.SavePage(ctx, title, "{}"); err != nil {
			t.Fatalf("SavePage(%q) failed: %v", title, err)
		}
	}
	_, _, _ = db.SavePage(ctx, "MOOC:Kurs/a", `{"type": "lesson"}`)

	tests := []struct {
		prefix string
		want   []models.Identifier
	}{
		{prefix: "MOOC:Kurs", want: []models.Identifier{"MOOC:Kurs", "MOOC:Kurs/a", "MOOC:Kurs/b"}},
		{prefix: "MOOC:Kurs/", want: []models.Identifier{"MOOC:Kurs/a", "MOOC:Kurs/b"}},
		{prefix: "Kurs_", want: []models.Identifier{"Kurs_1"}},
		{prefix: "Kurs%", want: nil},
		{prefix: "", want: []models.Identifier{"Kurs_1", "MOOC:Kurs", "MOOC:Kurs/a", "MOOC:Kurs/b", "MOOC:Other"}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			pages, err := db.ListPages(ctx, tt.prefix)
			if err != nil {
				t.Fatalf("ListPages() failed: %v", err)
			}
			if len(pages) != len(tt.want) {
				t.Fatalf("ListPages() returned %d pages, want %d", len(pages), len(tt.want))
			}
			for i, p := range pages {
				if p.Title != tt.want[i] {
					t.Errorf("pages[%d] = %q, want %q", i, p.Title, tt.want[i])
				}
			}
		})
	}

	pages, _ := db.ListPages(ctx, "MOOC:Kurs/a")
	if len(pages) != 1 || pages[0].Revisions != 2 || pages[0].Namespace != "MOOC" {
		t.Errorf("ListPages() info = %+v, want 2 revisions in namespace MOOC", pages)
	}
	if pages[0].SizeBytes != int64(len(`{"type": "lesson"}`)) {
		t.Errorf("SizeBytes = %d, want latest revision size", pages[0].SizeBytes)
	}
}
