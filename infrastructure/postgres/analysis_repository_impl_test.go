package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"photocritic/domain/models"
	"photocritic/domain/repositories"
	"photocritic/infrastructure/postgres"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Driver:     postgres.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := postgres.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	db     *gorm.DB
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	user := &models.User{ExternalID: "sub-1", Email: "owner@example.com", DisplayName: "Owner"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &fixture{t: t, db: db, userID: user.ID}
}

func (f *fixture) photo(cameraModel string, hidden bool) *models.Photo {
	f.t.Helper()
	owner := f.userID
	p := &models.Photo{
		UserID:           &owner,
		OriginalFilename: "img.jpg",
		Location:         models.ImageLocation{Backend: models.StorageLocal, URL: "/uploads/img.jpg"},
		CameraModel:      cameraModel,
		IsHidden:         hidden,
	}
	if err := f.db.Create(p).Error; err != nil {
		f.t.Fatalf("create photo: %v", err)
	}
	return p
}

func (f *fixture) analysis(p *models.Photo, minutes int, hidden bool) *models.Analysis {
	f.t.Helper()
	a := &models.Analysis{
		PhotoID:      p.ID,
		UserID:       p.UserID,
		Summary:      fmt.Sprintf("at +%dm", minutes),
		OverallScore: 50,
		CameraModel:  p.CameraModel,
		IsHidden:     hidden,
		CreatedAt:    base.Add(time.Duration(minutes) * time.Minute),
	}
	if err := f.db.Create(a).Error; err != nil {
		f.t.Fatalf("create analysis: %v", err)
	}
	return a
}

func TestListCurrentPaginationProperty(t *testing.T) {
	f := newFixture(t)
	repo := postgres.NewAnalysisRepository(f.db)
	ctx := context.Background()

	// seven photos, some with several analyses, two sharing a timestamp
	for i := 0; i < 7; i++ {
		p := f.photo("X-T5", false)
		f.analysis(p, i*10, false)
		if i%2 == 0 {
			f.analysis(p, i*10+5, false)
		}
		if i == 3 {
			f.analysis(p, 65, false)
		}
	}

	for _, limit := range []int{1, 2, 3, 7, 10} {
		seen := map[uuid.UUID]bool{}
		seenPhoto := map[uuid.UUID]bool{}
		var prev *models.Analysis
		var total int64
		for page := 0; ; page++ {
			rows, n, err := repo.ListCurrent(ctx, repositories.AnalysisFilter{UserID: &f.userID, Offset: page * limit, Limit: limit})
			if err != nil {
				t.Fatalf("limit %d page %d: %v", limit, page, err)
			}
			total = n
			if len(rows) == 0 {
				break
			}
			for i := range rows {
				row := rows[i]
				if seen[row.ID] || seenPhoto[row.PhotoID] {
					t.Fatalf("limit %d: duplicate row or photo %s", limit, row.ID)
				}
				seen[row.ID], seenPhoto[row.PhotoID] = true, true
				if row.Photo == nil {
					t.Fatal("photo not preloaded")
				}
				if prev != nil && row.CreatedAt.After(prev.CreatedAt) {
					t.Fatalf("limit %d: not ordered newest first", limit)
				}
				prev = &row
			}
		}
		if total != 7 {
			t.Errorf("limit %d: total = %d, want 7", limit, total)
		}
		if int64(len(seen)) != total {
			t.Errorf("limit %d: concatenated %d items, total %d", limit, len(seen), total)
		}
	}
}

func TestListCurrentByCameraOneCardPerPhoto(t *testing.T) {
	f := newFixture(t)
	repo := postgres.NewAnalysisRepository(f.db)

	p1 := f.photo("EOS R5", false)
	f.analysis(p1, 1, false)
	newest := f.analysis(p1, 9, false)
	p2 := f.photo("EOS R5", false)
	f.analysis(p2, 5, false)
	other := f.photo("Z8", false)
	f.analysis(other, 20, false)

	rows, total, err := repo.ListCurrent(context.Background(), repositories.AnalysisFilter{CameraModel: "EOS R5", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("got %d rows, total %d; want 2", len(rows), total)
	}
	if rows[0].ID != newest.ID {
		t.Errorf("first card should be the newest analysis of p1")
	}
	if rows[1].PhotoID != p2.ID {
		t.Errorf("second card should be p2")
	}

	if _, total, _ := repo.ListCurrent(context.Background(), repositories.AnalysisFilter{CameraModel: "EOS", Limit: 10}); total != 0 {
		t.Errorf("camera filter must be exact, got total %d", total)
	}
}

func TestListCurrentHiddenFiltering(t *testing.T) {
	f := newFixture(t)
	repo := postgres.NewAnalysisRepository(f.db)
	ctx := context.Background()

	p := f.photo("A7", false)
	older := f.analysis(p, 1, false)
	f.analysis(p, 2, true) // hidden newest
	hiddenPhoto := f.photo("A7", true)
	f.analysis(hiddenPhoto, 3, false)

	rows, total, err := repo.ListCurrent(ctx, repositories.AnalysisFilter{UserID: &f.userID, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || rows[0].ID != older.ID {
		t.Fatalf("visible listing should surface the older visible row, got %d rows", total)
	}

	_, total, err = repo.ListCurrent(ctx, repositories.AnalysisFilter{UserID: &f.userID, IncludeHidden: true, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("includeHidden total = %d, want 2", total)
	}
}

func TestListCurrentPastLastPage(t *testing.T) {
	f := newFixture(t)
	repo := postgres.NewAnalysisRepository(f.db)
	f.analysis(f.photo("", false), 1, false)

	rows, total, err := repo.ListCurrent(context.Background(), repositories.AnalysisFilter{Offset: 5, Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 || total != 1 {
		t.Errorf("rows = %d, total = %d", len(rows), total)
	}
}

func TestDeleteOrphansOpinions(t *testing.T) {
	f := newFixture(t)
	repo := postgres.NewAnalysisRepository(f.db)
	opinions := postgres.NewOpinionRepository(f.db)
	ctx := context.Background()

	a := f.analysis(f.photo("", false), 1, false)
	op, err := opinions.Upsert(ctx, a.ID, f.userID, true, "nice")
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var reloaded models.Opinion
	if err := f.db.First(&reloaded, "id = ?", op.ID).Error; err != nil {
		t.Fatalf("opinion should survive: %v", err)
	}
	if reloaded.AnalysisID != nil {
		t.Errorf("analysis reference should be NULL, got %v", reloaded.AnalysisID)
	}
	if err := repo.Delete(ctx, a.ID); err != gorm.ErrRecordNotFound {
		t.Errorf("second delete: got %v", err)
	}
}

func TestDeleteRedundantKeepsNewestAndHidden(t *testing.T) {
	f := newFixture(t)
	repo := postgres.NewAnalysisRepository(f.db)
	ctx := context.Background()

	p := f.photo("", false)
	f.analysis(p, 1, false)
	f.analysis(p, 2, false)
	hidden := f.analysis(p, 3, true)
	newest := f.analysis(p, 4, false)
	single := f.analysis(f.photo("", false), 1, false)

	deleted, err := repo.DeleteRedundant(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	var remaining []uuid.UUID
	f.db.Model(&models.Analysis{}).Order("created_at").Pluck("id", &remaining)
	want := map[uuid.UUID]bool{hidden.ID: true, newest.ID: true, single.ID: true}
	if len(remaining) != len(want) {
		t.Fatalf("remaining = %v", remaining)
	}
	for _, id := range remaining {
		if !want[id] {
			t.Errorf("unexpected survivor %s", id)
		}
	}
}

func TestOpinionUpsertLatestWins(t *testing.T) {
	f := newFixture(t)
	repo := postgres.NewOpinionRepository(f.db)
	ctx := context.Background()
	a := f.analysis(f.photo("", false), 1, false)

	// a legacy duplicate written before upserts existed
	legacy := &models.Opinion{AnalysisID: &a.ID, UserID: f.userID, Liked: false, Comment: "old", CreatedAt: base}
	if err := f.db.Create(legacy).Error; err != nil {
		t.Fatal(err)
	}
	latest := &models.Opinion{AnalysisID: &a.ID, UserID: f.userID, Liked: true, Comment: "newer", CreatedAt: base.Add(time.Hour)}
	if err := f.db.Create(latest).Error; err != nil {
		t.Fatal(err)
	}

	got, err := repo.Upsert(ctx, a.ID, f.userID, false, "changed my mind")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != latest.ID {
		t.Errorf("upsert should rewrite the latest row")
	}

	list, err := repo.ListCanonical(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("canonical list has %d entries, want 1", len(list))
	}
	if list[0].Comment != "changed my mind" || list[0].Liked {
		t.Errorf("canonical opinion = %+v", list[0])
	}
	if list[0].User == nil || list[0].User.DisplayName != "Owner" {
		t.Error("user not preloaded")
	}
}

func TestCameraModelEnsureExistsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewCameraModelRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.EnsureExists(ctx, "FUJIFILM", "X-T5"); err != nil {
			t.Fatalf("ensure %d: %v", i, err)
		}
	}
	if err := repo.EnsureExists(ctx, "FUJIFILM", "  "); err != nil {
		t.Fatal(err)
	}
	list, err := repo.List(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].DisplayName != "FUJIFILM X-T5" {
		t.Errorf("catalog = %+v", list)
	}
}
