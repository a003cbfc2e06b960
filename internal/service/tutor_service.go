package service

import (
	"errors"
	"math/rand"

	"mytutor/internal/catalog"
	"mytutor/internal/model"
	"mytutor/internal/repository"
	"mytutor/internal/util"

	"gorm.io/gorm"
)

type TutorService struct {
	UserRepo *repository.UserRepository
	// pick returns an index in [0, n)
	pick func(n int) int
}

func NewTutorService(userRepo *repository.UserRepository) *TutorService {
	return &TutorService{
		UserRepo: userRepo,
		pick:     rand.Intn,
	}
}

// SelectSubject records the learner's grade and subject and assigns a tutor
// from the pool. Picking again reassigns.
func (s *TutorService) SelectSubject(username, grade, subject string) (*model.User, error) {
	if !catalog.IsGrade(grade) {
		return nil, util.ErrUnknownGrade
	}
	if !catalog.IsSubject(subject) {
		return nil, util.ErrUnknownSubject
	}

	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}

	tutor := catalog.TutorNames[s.pick(len(catalog.TutorNames))]
	if err := s.UserRepo.UpdateProfile(user.ID, grade, subject, tutor); err != nil {
		return nil, err
	}

	user.Grade = grade
	user.Subject = subject
	user.TutorName = tutor
	return user, nil
}

func (s *TutorService) AssignedTutor(username string) (*model.User, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}
	if !user.HasTutor() {
		return nil, util.ErrNoTutorAssigned
	}
	return user, nil
}

func (s *TutorService) findUser(username string) (*model.User, error) {
	user, err := s.UserRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
