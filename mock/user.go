package mock

import (
	"context"

	"tuneauth"
)

var _ tuneauth.UserService = &UserService{}

type UserService struct {
	FindUserByUsernameFn         func(ctx context.Context, username string) (*tuneauth.User, error)
	FindOrCreateUserByUsernameFn func(ctx context.Context, username string) (*tuneauth.User, bool, error)
	SetPasswordFn                func(ctx context.Context, username, password string) error
	AuthenticateFn               func(ctx context.Context, username, password string) (*tuneauth.User, error)
	AttachSongFn                 func(ctx context.Context, username string, song *tuneauth.Song) error
	RemoveSongFn                 func(ctx context.Context, username, songID string) (int, error)
	AppendMetricFn               func(ctx context.Context, username string, metric *tuneauth.Metric) error
}

func (s *UserService) FindUserByUsername(ctx context.Context, username string) (*tuneauth.User, error) {
	return s.FindUserByUsernameFn(ctx, username)
}

func (s *UserService) FindOrCreateUserByUsername(ctx context.Context, username string) (*tuneauth.User, bool, error) {
	return s.FindOrCreateUserByUsernameFn(ctx, username)
}

func (s *UserService) SetPassword(ctx context.Context, username, password string) error {
	return s.SetPasswordFn(ctx, username, password)
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (*tuneauth.User, error) {
	return s.AuthenticateFn(ctx, username, password)
}

func (s *UserService) AttachSong(ctx context.Context, username string, song *tuneauth.Song) error {
	return s.AttachSongFn(ctx, username, song)
}

func (s *UserService) RemoveSong(ctx context.Context, username, songID string) (int, error) {
	return s.RemoveSongFn(ctx, username, songID)
}

func (s *UserService) AppendMetric(ctx context.Context, username string, metric *tuneauth.Metric) error {
	return s.AppendMetricFn(ctx, username, metric)
}
