package models

import "time"

// PaperStatus is the publication state of a paper.
// Go Pattern: string constants instead of enums.
type PaperStatus string

const (
	PaperDraft     PaperStatus = "draft"
	PaperPublished PaperStatus = "published"
)

// Valid reports whether s is one of the known statuses.
func (s PaperStatus) Valid() bool {
	return s == PaperDraft || s == PaperPublished
}

// PaperDoc is a persisted exam paper. A draft is visible only to its owner;
// a published paper is visible to everyone and can be adopted.
type PaperDoc struct {
	ID             string      `json:"id" db:"id" bson:"_id"`
	Title          string      `json:"title" db:"title" bson:"title"`
	CourseCode     string      `json:"courseCode" db:"course_code" bson:"courseCode"`
	CourseName     string      `json:"courseName" db:"course_name" bson:"courseName"`
	ExamDate       string      `json:"examDate" db:"exam_date" bson:"examDate"`
	ExamYear       string      `json:"examYear" db:"exam_year" bson:"examYear"`
	Status         PaperStatus `json:"status" db:"status" bson:"status"`
	OwnerUID       string      `json:"ownerUid" db:"owner_uid" bson:"ownerUid"`
	OwnerName      *string     `json:"ownerName" db:"owner_name" bson:"ownerName"`
	OwnerPhotoURL  *string     `json:"ownerPhotoURL" db:"owner_photo_url" bson:"ownerPhotoURL"`
	Questions      Questions   `json:"questions" db:"questions" bson:"questions"`
	UniversityID   *string     `json:"universityId" db:"university_id" bson:"universityId"`
	UniversityName *string     `json:"universityName" db:"university_name" bson:"universityName"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// IsPublished is a small readability helper used by handlers.
func (p *PaperDoc) IsPublished() bool {
	return p.Status == PaperPublished
}

// VisibleTo reports whether uid may read the paper.
func (p *PaperDoc) VisibleTo(uid string) bool {
	return p.IsPublished() || p.OwnerUID == uid
}
