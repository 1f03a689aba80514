package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
)

type ProfileService struct {
	repo  ports.ProfileRepository
	clock ports.Clock
}

func NewProfileService(repo ports.ProfileRepository, clock ports.Clock) *ProfileService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ProfileService{repo: repo, clock: clock}
}

func (s *ProfileService) Save(ctx context.Context, profile domain.Profile) error {
	profile.Params = profile.Params.WithDefaults()
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("validate profile: %w", err)
	}
	profile.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}

func (s *ProfileService) Get(ctx context.Context, name domain.ProfileName) (domain.Profile, error) {
	profile, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.Profile{}, fmt.Errorf("profile %q: %w", name, err)
		}
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}

func (s *ProfileService) Remove(ctx context.Context, name domain.ProfileName) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		return fmt.Errorf("remove profile: %w", err)
	}

	return nil
}
