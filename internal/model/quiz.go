package model

// QuizRecord is a quiz the model produced. Records are kept so recent quizzes
// for a topic can be listed again.
type QuizRecord struct {
	BaseModel
	Topic      string `gorm:"size:100;index;not null" json:"topic"`
	Difficulty string `gorm:"size:20" json:"difficulty"`
	Content    string `gorm:"type:text" json:"quiz_content"`
}

func (QuizRecord) TableName() string {
	return "quiz_records"
}
