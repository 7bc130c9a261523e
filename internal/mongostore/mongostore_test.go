package mongostore

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

func TestPrefixRegexEscapesTerm(t *testing.T) {
	got := prefixRegex("C++ (intro)")
	if got["$regex"] != `^C\+\+ \(intro\)` {
		t.Errorf("$regex = %v", got["$regex"])
	}
	if got["$options"] != "i" {
		t.Errorf("$options = %v, want i", got["$options"])
	}
}

func TestMapNotFound(t *testing.T) {
	if err := mapNotFound("paper", mongo.ErrNoDocuments); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("ErrNoDocuments should map to ErrNotFound, got %v", err)
	}
	if err := mapNotFound("paper", errors.New("socket closed")); errors.Is(err, apperrors.ErrNotFound) {
		t.Error("transport errors must not look like not-found")
	}
}

// TestPaperBSONShape checks the document field names other tools query on.
func TestPaperBSONShape(t *testing.T) {
	five := 5.0
	p := models.PaperDoc{
		ID:         "p1",
		CourseCode: "CS101",
		Status:     models.PaperPublished,
		OwnerUID:   "u1",
		Questions:  models.Questions{{QuestionNumber: "1", Text: "Define a set", Marks: &five}},
	}

	raw, err := bson.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"_id", "courseCode", "status", "ownerUid", "questions", "createdAt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("BSON document missing %q: %v", key, doc)
		}
	}

	var back models.PaperDoc
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != "p1" || *back.Questions[0].Marks != 5 {
		t.Errorf("decoded = %+v", back)
	}
}
