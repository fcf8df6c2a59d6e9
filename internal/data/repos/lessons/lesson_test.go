package lessons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobots-backend/internal/data/repos/testutil"
	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/platform/dbctx"
)

func sampleRecord(topic string) *lesson.Record {
	plan := lesson.Plan{Subject: lesson.SubjectPhysics, Topic: topic}
	draft := lesson.Draft{Plan: plan, ContentText: "# " + topic + "\n\n## Content\nForces → acceleration, F = m·a ✓\n"}
	assets := lesson.Assets{
		AudioScript: "Welcome back to the show.",
		VideoStoryboard: []lesson.Scene{
			{ID: 1, VisualPrompt: "title", Narration: "Welcome", ImageURL: "/generated_images/scene_1.jpg"},
			{ID: 2, VisualPrompt: "apple falling", Narration: "Gravity pulls"},
			{ID: 3, VisualPrompt: "trophy", Narration: "Great job!", ImageURL: "/generated_images/scene_3.jpg"},
		},
	}
	verification := lesson.VerificationResult{Status: lesson.StatusVerified, ChecksPassed: []string{"Format check", "Safety check"}}
	return lesson.NewRecord(plan, draft, assets, verification, time.Now())
}

func TestLessonRepoRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewLessonRepo(db, testutil.Logger(t))

	in := sampleRecord("Newton's Laws")
	created, err := repo.Create(dbc, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("Create did not assign an id")
	}

	got, err := repo.GetByID(dbc, created.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.Content != in.Content {
		t.Fatalf("content changed:\n got=%q\nwant=%q", got.Content, in.Content)
	}
	wantScenes := in.Assets.Data().VideoStoryboard
	gotScenes := got.Assets.Data().VideoStoryboard
	if len(gotScenes) != len(wantScenes) {
		t.Fatalf("scene count: got=%d want=%d", len(gotScenes), len(wantScenes))
	}
	for i := range wantScenes {
		if gotScenes[i] != wantScenes[i] {
			t.Fatalf("scene %d: got=%+v want=%+v", i, gotScenes[i], wantScenes[i])
		}
	}
	if !got.VerificationLog.Data().Verified() {
		t.Fatalf("verification log lost: %+v", got.VerificationLog.Data())
	}
}

func TestLessonRepoGetByIDMissing(t *testing.T) {
	db := testutil.DB(t)
	repo := NewLessonRepo(db, testutil.Logger(t))
	dbc := dbctx.Of(context.Background())

	got, err := repo.GetByID(dbc, uuid.New())
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got=%v err=%v", got, err)
	}
	got, err = repo.GetByID(dbc, uuid.Nil)
	if err != nil || got != nil {
		t.Fatalf("nil id: got=%v err=%v", got, err)
	}
}

func TestLessonRepoListRecentByOwner(t *testing.T) {
	db := testutil.DB(t)
	repo := NewLessonRepo(db, testutil.Logger(t))
	dbc := dbctx.Of(context.Background())

	owner := uuid.New()
	a := sampleRecord("Vectors")
	a.OwnerUserID = testutil.PtrUUID(owner)
	b := sampleRecord("Torque")
	b.OwnerUserID = testutil.PtrUUID(owner)
	b.CreatedAt = a.CreatedAt.Add(time.Minute)
	c := sampleRecord("Acids")
	for _, row := range []*lesson.Record{a, b, c} {
		if _, err := repo.Create(dbc, row); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rows, err := repo.ListRecent(dbc, testutil.PtrUUID(owner), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(rows) != 2 || rows[0].Topic != "Torque" {
		t.Fatalf("unexpected rows: %d first=%v", len(rows), rows)
	}
	all, err := repo.ListRecent(dbc, nil, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListRecent all: len=%d err=%v", len(all), err)
	}
}
