package repository

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/flexiworks/cetpredict/internal/config"
	"github.com/flexiworks/cetpredict/internal/cutoff/domain"
	"go.uber.org/zap"
)

type repository struct {
	rounds []string
	tables map[string][]domain.CutoffRecord
}

// NewRepository loads every configured round's CSV source into memory.
// A missing or unreadable source leaves that round permanently empty for the
// process lifetime; this is not fatal.
func NewRepository(cfg config.Config, rounds config.RoundsConfig, log *zap.Logger) domain.Repository {
	log = log.Named("cutoff.repository")

	repo := &repository{
		tables: make(map[string][]domain.CutoffRecord, len(rounds.Rounds)),
	}

	for _, round := range rounds.Rounds {
		name := strings.TrimSpace(round.Name)
		if name == "" {
			continue
		}
		repo.rounds = append(repo.rounds, name)

		path := rounds.SourcePath(cfg.DataDir, round)
		records, err := loadCSV(path)
		if err != nil {
			log.Warn("cutoff source not loaded",
				zap.String("round", name),
				zap.String("path", path),
				zap.Error(err),
			)
			repo.tables[name] = nil
			continue
		}

		repo.tables[name] = records
		log.Info("cutoff source loaded",
			zap.String("round", name),
			zap.Int("records", len(records)),
		)
	}

	return repo
}

func (r *repository) Rounds() []string {
	out := make([]string, len(r.rounds))
	copy(out, r.rounds)
	return out
}

func (r *repository) HasRound(round string) bool {
	_, ok := r.tables[strings.TrimSpace(round)]
	return ok
}

func (r *repository) AllRecords(round string) []domain.CutoffRecord {
	return r.tables[strings.TrimSpace(round)]
}

func (r *repository) ListDistinct(round, field string) []string {
	seen := make(map[string]string)
	for _, rec := range r.tables[strings.TrimSpace(round)] {
		var value string
		switch field {
		case domain.FieldCourse:
			value = rec.Course
		case domain.FieldCategory:
			value = rec.Category
		case domain.FieldBranch:
			value = rec.Branch
		default:
			return nil
		}

		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[domain.Normalize(value)]; !ok {
			seen[domain.Normalize(value)] = value
		}
	}

	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return domain.Normalize(out[i]) < domain.Normalize(out[j])
	})
	return out
}

func loadCSV(path string) ([]domain.CutoffRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[domain.Normalize(name)] = i
	}

	var records []domain.CutoffRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single malformed row must not fail the whole load.
			continue
		}

		rank, err := strconv.Atoi(strings.TrimSpace(cell(row, cols, "cutoff_rank")))
		if err != nil {
			continue
		}

		records = append(records, domain.CutoffRecord{
			CollegeCode: strings.TrimSpace(cell(row, cols, "college_code")),
			CollegeName: strings.TrimSpace(cell(row, cols, "college_name")),
			Course:      strings.TrimSpace(cell(row, cols, "course")),
			Category:    strings.TrimSpace(cell(row, cols, "category")),
			Branch:      strings.TrimSpace(cell(row, cols, "branch")),
			CutoffRank:  rank,
		})
	}

	return records, nil
}

func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
