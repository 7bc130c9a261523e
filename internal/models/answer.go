package models

import "time"

// AnswerDoc is a user's private copy of a published paper's structure
// with an answer slot for every question and sub-question.
// The metadata fields are a snapshot taken at adoption time.
type AnswerDoc struct {
	ID             string    `json:"id" db:"id" bson:"_id"`
	PaperID        string    `json:"paperId" db:"paper_id" bson:"paperId"`
	OwnerUID       string    `json:"ownerUid" db:"owner_uid" bson:"ownerUid"`
	OwnerName      *string   `json:"ownerName" db:"owner_name" bson:"ownerName"`
	OwnerPhotoURL  *string   `json:"ownerPhotoURL" db:"owner_photo_url" bson:"ownerPhotoURL"`
	Title          string    `json:"title" db:"title" bson:"title"`
	CourseCode     string    `json:"courseCode" db:"course_code" bson:"courseCode"`
	CourseName     string    `json:"courseName" db:"course_name" bson:"courseName"`
	ExamDate       string    `json:"examDate" db:"exam_date" bson:"examDate"`
	ExamYear       string    `json:"examYear" db:"exam_year" bson:"examYear"`
	UniversityID   *string   `json:"universityId" db:"university_id" bson:"universityId"`
	UniversityName *string   `json:"universityName" db:"university_name" bson:"universityName"`
	Answers        Answers   `json:"answers" db:"answers" bson:"answers"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// AnswerQuestion mirrors one Question of the source paper.
type AnswerQuestion struct {
	QuestionNumber string              `json:"question_number" bson:"question_number"`
	Answer         string              `json:"answer" bson:"answer"`
	SubQuestions   []AnswerSubQuestion `json:"sub_questions" bson:"sub_questions"`
}

// AnswerSubQuestion mirrors one SubQuestion of the source paper.
type AnswerSubQuestion struct {
	SubNumber string `json:"sub_number" bson:"sub_number"`
	Answer    string `json:"answer" bson:"answer"`
}
