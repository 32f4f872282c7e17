package importer

import (
	"context"
	"strings"

	"github.com/smallbiznis/streetsignal/internal/catalog/repository"
	"go.uber.org/zap"
)

const (
	DefaultBatchSize  = 99
	DefaultMaxPlayers = 20
)

type Fetcher interface {
	Page(ctx context.Context, offset, limit int) ([]Facility, error)
}

type Writer interface {
	Upsert(ctx context.Context, courts []repository.Court) (int64, error)
}

type Stats struct {
	Pages    int
	Fetched  int
	Imported int
	Skipped  int
}

// Importer copies basketball facilities from the dataset into the courts table.
type Importer struct {
	fetcher   Fetcher
	writer    Writer
	log       *zap.Logger
	batchSize int
	maxPages  int
}

type Option func(*Importer)

func WithBatchSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithMaxPages stops after n pages; zero means until the dataset is exhausted.
func WithMaxPages(n int) Option {
	return func(i *Importer) { i.maxPages = n }
}

func New(fetcher Fetcher, writer Writer, log *zap.Logger, opts ...Option) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	imp := &Importer{
		fetcher:   fetcher,
		writer:    writer,
		log:       log.Named("catalog.importer"),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

func (i *Importer) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	for offset := 0; ; offset += i.batchSize {
		if i.maxPages > 0 && stats.Pages >= i.maxPages {
			break
		}
		facilities, err := i.fetcher.Page(ctx, offset, i.batchSize)
		if err != nil {
			return stats, err
		}
		if len(facilities) == 0 {
			break
		}
		stats.Pages++
		stats.Fetched += len(facilities)

		courts := make([]repository.Court, 0, len(facilities))
		for _, f := range facilities {
			court, ok := ToCourt(f)
			if !ok {
				stats.Skipped++
				continue
			}
			courts = append(courts, court)
		}
		if _, err := i.writer.Upsert(ctx, courts); err != nil {
			return stats, err
		}
		stats.Imported += len(courts)
		i.log.Info("imported page",
			zap.Int("offset", offset),
			zap.Int("courts", len(courts)),
			zap.Int("total", stats.Imported),
		)
	}
	return stats, nil
}

// ToCourt maps a facility; rows without id or coordinates are rejected.
func ToCourt(f Facility) (repository.Court, bool) {
	if strings.TrimSpace(f.ID) == "" || f.Coordinates == nil {
		return repository.Court{}, false
	}
	if f.Coordinates.Lat == 0 || f.Coordinates.Lon == 0 {
		return repository.Court{}, false
	}

	typeName := strings.TrimSpace(f.TypeName)
	if typeName == "" {
		typeName = "Terrain"
	}
	city := firstNonEmpty(f.Town, f.PostalCode, "France")
	floor := ClassifySurface(f.TypeFamily)
	maxPlayers := DefaultMaxPlayers
	lighting := false

	return repository.Court{
		OsmID:      strings.TrimSpace(f.ID),
		Name:       typeName + " - " + strings.TrimSpace(f.Installation),
		Lat:        f.Coordinates.Lat,
		Lng:        f.Coordinates.Lon,
		MaxPlayers: &maxPlayers,
		Floor:      &floor,
		Lighting:   &lighting,
		Address:    strings.TrimSpace(f.Address),
		City:       city,
	}, true
}

// ClassifySurface derives the floor type from the facility family.
func ClassifySurface(family string) string {
	f := strings.ToLower(strings.TrimSpace(family))
	switch {
	case f == "":
		return "Bitume"
	case strings.Contains(f, "découvert"):
		return "Bitume"
	case strings.Contains(f, "salle"), strings.Contains(f, "couvert"):
		return "Parquet"
	default:
		return "Synthétique"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
