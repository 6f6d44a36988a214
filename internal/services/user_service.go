package services

import (
	"context"

	"swyft/internal/models"
	"swyft/internal/repositories/interfaces"
)

type UserService interface {
	ListDrivers(ctx context.Context) ([]*models.DriverSummary, error)
}

type userService struct {
	userRepo interfaces.UserRepository
}

func NewUserService(userRepo interfaces.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListDrivers(ctx context.Context) ([]*models.DriverSummary, error) {
	return s.userRepo.ListDrivers(ctx)
}
