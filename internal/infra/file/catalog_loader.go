package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"artquiz-service/internal/catalog"
	"artquiz-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// paintingsEnvelope is the on-disk shape of a catalog file.
type paintingsEnvelope struct {
	Paintings []domain.Painting `json:"paintings"`
}

// CatalogLoader reads the painting catalog from a single JSON file or from a directory of
// per-period JSON files sharing the same shape.
type CatalogLoader struct {
	path   string
	logger *zap.Logger
}

func NewCatalogLoader(path string, logger *zap.Logger) *CatalogLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogLoader{path: path, logger: logger}
}

// Load returns the catalog. Directory files are merged in file-name order. Records without an id
// get a generated one.
func (l *CatalogLoader) Load(ctx context.Context) (*catalog.Catalog, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}

	var paintings []domain.Painting
	if info.IsDir() {
		paintings, err = l.loadDir(ctx)
	} else {
		paintings, err = readPaintings(l.path)
	}
	if err != nil {
		return nil, err
	}

	generated := 0
	for i := range paintings {
		if strings.TrimSpace(paintings[i].ID) == "" {
			paintings[i].ID = uuid.NewString()
			generated++
		}
	}
	if generated > 0 {
		l.logger.Warn("catalog records without id", zap.Int("count", generated))
	}
	l.logger.Info("catalog loaded", zap.String("path", l.path), zap.Int("paintings", len(paintings)))
	return catalog.New(paintings), nil
}

func (l *CatalogLoader) loadDir(ctx context.Context) ([]domain.Painting, error) {
	files, err := filepath.Glob(filepath.Join(l.path, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	parts := make([][]domain.Painting, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ps, err := readPaintings(f)
			if err != nil {
				return err
			}
			parts[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.Painting
	for _, ps := range parts {
		out = append(out, ps...)
	}
	return out, nil
}

func readPaintings(path string) ([]domain.Painting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var env paintingsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", filepath.Base(path), err)
	}
	// an absent "period" key never reaches Period.UnmarshalJSON
	for i, p := range env.Paintings {
		if !p.Period.Valid() {
			return nil, fmt.Errorf("decode catalog %s: painting %d (%q): %w", filepath.Base(path), i, p.ID, domain.ErrUnknownPeriod)
		}
	}
	return env.Paintings, nil
}
