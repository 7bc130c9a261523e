package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestNormalizeFillsCollections verifies that every collection is present
// after normalization, including the nested ones.
func TestNormalizeFillsCollections(t *testing.T) {
	p := ParsedPaper{
		CourseCode: "MATH101",
		Questions: []Question{
			{QuestionNumber: "1", Text: "Prove it", SubQuestions: []SubQuestion{{SubNumber: "a", Text: "Part a"}}},
		},
	}
	p.Normalize()

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{`"figures":[]`, `"equations":[]`, `"marks":null`, `"exam_date":""`} {
		if !strings.Contains(out, want) {
			t.Errorf("normalized JSON missing %s: %s", want, out)
		}
	}
	if p.Questions[0].SubQuestions[0].Figures == nil {
		t.Error("sub-question figures still nil")
	}
}

func TestNormalizeEmptyPaper(t *testing.T) {
	var p ParsedPaper
	p.Normalize()
	if p.Questions == nil || len(p.Questions) != 0 {
		t.Errorf("Questions = %#v, want empty slice", p.Questions)
	}
}

func TestMarksZeroIsNotNull(t *testing.T) {
	zero := 0.0
	data, err := json.Marshal(Question{QuestionNumber: "1", Text: "x", Marks: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"marks":0`) {
		t.Errorf("zero marks should serialize as 0: %s", data)
	}
}

func TestJSONColumnsRoundTrip(t *testing.T) {
	ten := 10.0
	qs := Questions{{QuestionNumber: "2", Text: "Explain", Marks: &ten}}

	v, err := qs.Value()
	if err != nil {
		t.Fatal(err)
	}

	var back Questions
	if err := back.Scan(v); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(back) != 1 || back[0].QuestionNumber != "2" || *back[0].Marks != 10 {
		t.Errorf("round trip = %+v", back)
	}
	if back[0].Figures == nil {
		t.Error("stored questions should carry empty figures")
	}

	var courses Courses
	if err := courses.Scan(`["CS101","CS102"]`); err != nil {
		t.Fatal(err)
	}
	if len(courses) != 2 {
		t.Errorf("courses = %v", courses)
	}
	if err := courses.Scan(42); err == nil {
		t.Error("scanning an int should fail")
	}
	if !courses.Has("cs101") || courses.Has("CS103") {
		t.Errorf("Has() on %v", courses)
	}
}

func TestPaperVisibility(t *testing.T) {
	tests := []struct {
		name   string
		status PaperStatus
		viewer string
		want   bool
	}{
		{"owner sees draft", PaperDraft, "owner", true},
		{"stranger cannot see draft", PaperDraft, "other", false},
		{"stranger sees published", PaperPublished, "other", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PaperDoc{Status: tt.status, OwnerUID: "owner"}
			if got := p.VisibleTo(tt.viewer); got != tt.want {
				t.Errorf("VisibleTo(%q) = %v, want %v", tt.viewer, got, tt.want)
			}
		})
	}
}

func TestUserIdentity(t *testing.T) {
	u := &User{ID: "u1", Email: "a@b.c"}
	id := u.Identity()
	if id.UID != "u1" || id.DisplayName != nil {
		t.Errorf("Identity() = %+v", id)
	}
	var nobody *User
	if nobody.Identity() != nil {
		t.Error("nil user should have nil identity")
	}
}
