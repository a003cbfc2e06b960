package repository

import (
	"mytutor/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.QuizRecord) error {
	return r.DB.Create(quiz).Error
}

// ListRecent returns up to limit quizzes, newest first. An empty topic
// matches every topic.
func (r *QuizRepository) ListRecent(topic string, limit int) ([]model.QuizRecord, error) {
	var quizzes []model.QuizRecord
	query := r.DB.Order("created_at DESC, id DESC").Limit(limit)
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	err := query.Find(&quizzes).Error
	return quizzes, err
}
