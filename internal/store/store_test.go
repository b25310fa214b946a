package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/swimlog/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "swimlog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMeetsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.InsertMeet(ctx, model.Meet{
		Name:      "Winter Invite",
		Location:  "Aquatic Center",
		Course:    model.CourseSCY,
		StartDate: date("2025-01-22"),
		EndDate:   date("2025-01-24"),
	})
	if err != nil {
		t.Fatalf("insert meet: %v", err)
	}
	meet, err := st.GetMeet(ctx, id)
	if err != nil {
		t.Fatalf("get meet: %v", err)
	}
	if meet.Name != "Winter Invite" || !meet.EndDate.Equal(date("2025-01-24")) {
		t.Fatalf("unexpected meet: %+v", meet)
	}
	if _, err := st.GetMeet(ctx, id+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMeetRemovesResults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	meetID, err := st.InsertMeet(ctx, model.Meet{Name: "Dual", Course: model.CourseSCY, StartDate: date("2025-02-01"), EndDate: date("2025-02-01")})
	if err != nil {
		t.Fatalf("insert meet: %v", err)
	}
	free := model.Event{Distance: 50, Stroke: model.StrokeFree}
	if _, err := st.InsertResult(ctx, model.Result{MeetID: meetID, Event: free, Course: model.CourseSCY, TimeMs: 28450, SwamOn: date("2025-02-01")}); err != nil {
		t.Fatalf("insert result: %v", err)
	}
	if _, err := st.InsertResult(ctx, model.Result{Event: free, Course: model.CourseSCY, TimeMs: 28900, SwamOn: date("2025-02-03")}); err != nil {
		t.Fatalf("insert result: %v", err)
	}
	if err := st.DeleteMeet(ctx, meetID); err != nil {
		t.Fatalf("delete meet: %v", err)
	}
	results, err := st.ListResults(ctx, model.ResultFilter{})
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 1 || results[0].TimeMs != 28900 {
		t.Fatalf("unexpected results after delete: %+v", results)
	}
	if err := st.DeleteMeet(ctx, meetID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPersonalBests(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	meetID, err := st.InsertMeet(ctx, model.Meet{Name: "Champs", Course: model.CourseSCY, StartDate: date("2025-03-07"), EndDate: date("2025-03-09")})
	if err != nil {
		t.Fatalf("insert meet: %v", err)
	}
	free50 := model.Event{Distance: 50, Stroke: model.StrokeFree}
	back100 := model.Event{Distance: 100, Stroke: model.StrokeBack}
	inputs := []model.Result{
		{Event: free50, Course: model.CourseSCY, TimeMs: 28900, SwamOn: date("2025-01-10")},
		{MeetID: meetID, Event: free50, Course: model.CourseSCY, TimeMs: 28450, SwamOn: date("2025-03-08")},
		{Event: free50, Course: model.CourseLCM, TimeMs: 31200, SwamOn: date("2025-06-01")},
		{Event: back100, Course: model.CourseSCY, TimeMs: 65320, SwamOn: date("2025-02-02")},
	}
	for _, r := range inputs {
		if _, err := st.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert result: %v", err)
		}
	}

	bests, err := st.PersonalBests(ctx, model.ResultFilter{Course: model.CourseSCY})
	if err != nil {
		t.Fatalf("personal bests: %v", err)
	}
	if len(bests) != 2 {
		t.Fatalf("expected 2 bests, got %+v", bests)
	}
	var free model.PersonalBest
	for _, pb := range bests {
		if pb.Event == free50 {
			free = pb
		}
	}
	if free.TimeMs != 28450 || free.MeetName != "Champs" || free.Swims != 2 {
		t.Fatalf("unexpected 50 free best: %+v", free)
	}

	since := date("2025-02-01")
	recent, err := st.ListResults(ctx, model.ResultFilter{Since: &since, Last: 2})
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(recent) != 2 || recent[0].TimeMs != 28450 || recent[1].TimeMs != 31200 {
		t.Fatalf("unexpected recent results: %+v", recent)
	}
}

func TestStandardsUpsertAndFilter(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	free50 := model.Event{Distance: 50, Stroke: model.StrokeFree}

	standards := []model.Standard{
		{Set: "Age Group", Name: "A", Event: free50, Course: model.CourseSCY, Gender: model.GenderFemale, AgeMin: 11, AgeMax: 12, TimeMs: 29500},
		{Set: "Age Group", Name: "AA", Event: free50, Course: model.CourseSCY, Gender: model.GenderFemale, AgeMin: 11, AgeMax: 12, TimeMs: 28500},
		{Set: "Age Group", Name: "AA", Event: free50, Course: model.CourseSCY, Gender: model.GenderMale, AgeMin: 11, AgeMax: 12, TimeMs: 27900},
		{Set: "Open", Name: "Sectionals", Event: free50, Course: model.CourseSCY, Gender: model.GenderMixed, TimeMs: 25000},
	}
	if _, err := st.UpsertStandards(ctx, standards); err != nil {
		t.Fatalf("upsert standards: %v", err)
	}
	standards[1].TimeMs = 28400
	if _, err := st.UpsertStandards(ctx, standards[1:2]); err != nil {
		t.Fatalf("re-upsert standards: %v", err)
	}

	got, err := st.ListStandards(ctx, model.StandardFilter{Event: &free50, Course: model.CourseSCY, Gender: model.GenderFemale, Age: 12})
	if err != nil {
		t.Fatalf("list standards: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 standards, got %+v", got)
	}
	if got[0].Name != "AA" || got[0].TimeMs != 28400 {
		t.Fatalf("expected updated AA first, got %+v", got[0])
	}

	sets, err := st.ListStandardSets(ctx)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %v", sets)
	}
	n, err := st.DeleteStandardSet(ctx, "Open")
	if err != nil || n != 1 {
		t.Fatalf("delete set: n=%d err=%v", n, err)
	}
}
