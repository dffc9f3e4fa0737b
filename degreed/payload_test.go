package degreed

import (
	"encoding/json"
	"testing"
)

func TestCourse_MarshalJSON_NilListsAreEmptyArrays(t *testing.T) {
	data, err := json.Marshal(Course{ContentID: "content-id", Title: "title"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"contentId":"content-id","authors":[],"categoryTags":[],"url":"","imageUrl":"",` +
		`"videoUrl":"","title":"title","description":"","difficulty":"","duration":0,` +
		`"publishDate":"","format":"","institution":"","costType":"","language":""}`
	if string(data) != want {
		t.Errorf("unexpected JSON:\n got %s\nwant %s", data, want)
	}
}

func TestCourse_MarshalJSON_KeepsLists(t *testing.T) {
	data, err := json.Marshal(Course{ContentID: "c", Authors: []string{"a"}, CategoryTags: []string{"t"}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if authors, _ := got["authors"].([]any); len(authors) != 1 || authors[0] != "a" {
		t.Errorf("unexpected authors: %v", got["authors"])
	}
	if tags, _ := got["categoryTags"].([]any); len(tags) != 1 || tags[0] != "t" {
		t.Errorf("unexpected categoryTags: %v", got["categoryTags"])
	}
}

func TestContentDeletePayload_IsLean(t *testing.T) {
	data, err := json.Marshal(ContentDeletePayload{Courses: []CourseReference{{ContentID: "content-id"}}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if want := `{"courses":[{"contentId":"content-id"}]}`; string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}
