package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/internal/interface/spreadsheet"
	"ssim-converter-service/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileReferenceRepository(t *testing.T) {
	dir := t.TempDir()
	files := ReferenceFiles{
		Airports: writeFile(t, dir, "airport.csv",
			"ICAO,IATA,Timezone\nCYYZ,YYZ,-5\nEGKK,LGW,0\nVIDP,DEL,+5.5\nXXXX,ZZZ,\\N\n,,\n"),
		Aircraft: writeFile(t, dir, "aircraft.csv",
			"ICAO;IATA\nA332;332\nB763;763\n"),
		Airlines: writeFile(t, dir, "airlines.csv",
			"Code,Name\nTS,Air Transat\n"),
	}

	repo, err := NewFileReferenceRepository(spreadsheet.NewReader(logger.NewNop()), files, logger.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	offsets, err := repo.ListOffsets(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]entity.UTCOffset{"YYZ": -300, "LGW": 0, "DEL": 330}, offsets)

	mappings, err := repo.ListMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A332": "332", "B763": "763"}, mappings)

	airline, err := repo.GetByCode(ctx, "ts")
	require.NoError(t, err)
	assert.Equal(t, "Air Transat", airline.Name)

	_, err = repo.GetByCode(ctx, "AC")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFileReferenceRepository_MissingFile(t *testing.T) {
	_, err := NewFileReferenceRepository(spreadsheet.NewReader(logger.NewNop()),
		ReferenceFiles{Airports: filepath.Join(t.TempDir(), "nope.csv")}, logger.NewNop())
	assert.Error(t, err)
}

func TestFileReferenceRepository_NoFiles(t *testing.T) {
	repo, err := NewFileReferenceRepository(spreadsheet.NewReader(logger.NewNop()), ReferenceFiles{}, logger.NewNop())
	require.NoError(t, err)

	offsets, err := repo.ListOffsets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, offsets)
}
