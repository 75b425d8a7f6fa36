package service

import (
	"context"
	"sort"
	"strings"

	"github.com/flexiworks/cetpredict/internal/config"
	"github.com/flexiworks/cetpredict/internal/cutoff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Repo   domain.Repository
	Rounds config.RoundsConfig
}

type Service struct {
	log          *zap.Logger
	repo         domain.Repository
	defaultRound string
}

func NewService(p Params) domain.Service {
	return &Service{
		log:          p.Log.Named("cutoff.service"),
		repo:         p.Repo,
		defaultRound: p.Rounds.DefaultRound(),
	}
}

func (s *Service) DefaultRound() string {
	return s.defaultRound
}

func (s *Service) CountEligible(ctx context.Context, q domain.Query) (int, error) {
	records, err := s.eligible(q)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *Service) ComputeEligible(ctx context.Context, q domain.Query) ([]domain.CutoffRecord, error) {
	records, err := s.eligible(q)
	if err != nil {
		return nil, err
	}

	// Ties keep their source order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CutoffRank < records[j].CutoffRank
	})
	return records, nil
}

func (s *Service) ComputeNearMiss(ctx context.Context, q domain.Query, eligible []domain.CutoffRecord) ([]domain.CutoffRecord, error) {
	round, err := s.resolveRound(q.Round)
	if err != nil {
		return nil, err
	}
	if err := validate(q); err != nil {
		return nil, err
	}

	taken := make(map[domain.Key]struct{}, len(eligible))
	for _, r := range eligible {
		taken[domain.KeyOf(r)] = struct{}{}
	}

	var out []domain.CutoffRecord
	for _, r := range s.repo.AllRecords(round) {
		if !matchesStrings(q, r) {
			continue
		}
		if r.CutoffRank >= q.Rank || r.CutoffRank < q.Rank-domain.NearMissWindow {
			continue
		}
		if _, ok := taken[domain.KeyOf(r)]; ok {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CutoffRank < out[j].CutoffRank
	})
	return out, nil
}

func (s *Service) GroupByBranch(records []domain.CutoffRecord) map[string][]domain.CutoffRecord {
	grouped := make(map[string][]domain.CutoffRecord)
	for _, r := range records {
		key := domain.BranchKey(r.Branch)
		grouped[key] = append(grouped[key], r)
	}
	return grouped
}

func (s *Service) Options(ctx context.Context, round string) (domain.Options, error) {
	resolved, err := s.resolveRound(round)
	if err != nil {
		return domain.Options{}, err
	}

	return domain.Options{
		Rounds:     s.repo.Rounds(),
		Courses:    s.repo.ListDistinct(resolved, domain.FieldCourse),
		Categories: s.repo.ListDistinct(resolved, domain.FieldCategory),
		Branches:   s.repo.ListDistinct(resolved, domain.FieldBranch),
	}, nil
}

func (s *Service) eligible(q domain.Query) ([]domain.CutoffRecord, error) {
	round, err := s.resolveRound(q.Round)
	if err != nil {
		return nil, err
	}
	if err := validate(q); err != nil {
		return nil, err
	}

	var out []domain.CutoffRecord
	for _, r := range s.repo.AllRecords(round) {
		if matchesStrings(q, r) && q.Rank <= r.CutoffRank {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) resolveRound(round string) (string, error) {
	round = strings.TrimSpace(round)
	if round == "" {
		round = s.defaultRound
	}
	if !s.repo.HasRound(round) {
		return "", domain.ErrUnknownRound
	}
	return round, nil
}

func validate(q domain.Query) error {
	if strings.TrimSpace(q.Course) == "" || strings.TrimSpace(q.Category) == "" {
		return domain.ErrMissingParameter
	}
	if q.Rank <= 0 {
		return domain.ErrInvalidRank
	}
	return nil
}

func matchesStrings(q domain.Query, r domain.CutoffRecord) bool {
	if domain.Normalize(q.Course) != domain.Normalize(r.Course) {
		return false
	}
	if domain.Normalize(q.Category) != domain.Normalize(r.Category) {
		return false
	}
	if branch := domain.Normalize(q.Branch); branch != "" && branch != domain.Normalize(r.Branch) {
		return false
	}
	return true
}
