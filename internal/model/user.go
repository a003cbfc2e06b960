package model

// User is a learner account. Grade, Subject and TutorName stay empty until
// the learner picks a subject.
type User struct {
	BaseModel
	Username     string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Grade        string `gorm:"size:20" json:"grade"`
	Subject      string `gorm:"size:50" json:"subject"`
	TutorName    string `gorm:"size:100" json:"tutor_name"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasTutor() bool {
	return u.TutorName != ""
}
