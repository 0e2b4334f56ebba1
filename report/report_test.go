package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductsize/model"
)

func sized() *model.Network {
	return &model.Network{
		Title:       "report test",
		FanPressure: 1,
		AirDensity:  0.075,
		Fittings: []*model.Fitting{
			{ID: 1, Kind: model.AirHandlingUnit, Flow: 800},
			{ID: 2, Kind: model.Duct, Flow: 800, Size: 12, PressureDrop: 0.25},
			{ID: 3, Kind: model.Tee, Flow: 800, Size: 12, SizeMain: 10, SizeBranch: 8,
				PressureDropMain: 0.0123, PressureDropBranch: 0.0456},
			{ID: 4, Kind: model.Diffuser, Flow: 500, Size: 10, FanDistance: 30, DiffuserPressureSum: 0.4321},
			{ID: 5, Kind: model.Diffuser, Flow: 300, Size: 8, FanDistance: 25, DiffuserPressureSum: 0.3},
		},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sized(), "table"))
	out := buf.String()

	assert.Contains(t, out, "report test")
	for _, h := range []string{"ID", "FITTING", "VELOCITY", "DELTAP", "DIAMETER", "TOTAL DELTAP"} {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "air_handling_unit")
	assert.Contains(t, out, "0.0456")
	assert.Contains(t, out, "0.4321")
	// 800 CFM / (π·1²/4 ft²)
	assert.Contains(t, out, "1018.592")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sized(), "json"))

	var got struct {
		Title    string `json:"title"`
		Fittings []struct {
			ID   int     `json:"id"`
			Type string  `json:"type"`
			Size float64 `json:"size"`
		} `json:"fittings"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "report test", got.Title)
	require.Len(t, got.Fittings, 5)
	assert.Equal(t, "tee", got.Fittings[2].Type)
	assert.Equal(t, 12.0, got.Fittings[2].Size)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, WriteFile(path, sized(), ""))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0.4321")
}
