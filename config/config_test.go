package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/goaltbc/altbc"
	"github.com/rmera/goaltbc/box"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestExampleConfig(Te *testing.T) {
	c, err := ReadString(ExampleConfig)
	require.NoError(Te, err)
	require.NoError(Te, c.Validate())
	assert.Equal(Te, "path/to/trajectory.xyz", c.Input.File)
	assert.Equal(Te, "triplets.csv", c.Output.CSV)
	assert.Empty(Te, c.Output.JSON)
	o, err := c.Options(nil)
	require.NoError(Te, err)
	def := altbc.DefaultOptions()
	assert.Equal(Te, def.Cutoff(), o.Cutoff())
	assert.Equal(Te, def.ThetaMin(), o.ThetaMin())
	assert.Equal(Te, def.GridSize(), o.GridSize())
	assert.Equal(Te, def.Cpus(), o.Cpus(), "Cpus = 0 keeps the default")
	assert.Equal(Te, box.AllPeriodic, o.PBC())
	l, err := c.LogLevel()
	require.NoError(Te, err)
	assert.Equal(Te, zapcore.InfoLevel, l)
}

func TestReadFile(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "altbc.ini")
	content := `[Input]
File = GeTe.xdatcar
Format = XDATCAR

[Analysis]
Cutoff = 3.2
ThetaMin = 150
Center = Te
MIC = true
PBC = T T F
Stride = 5
Cpus = 2

[Grid]
Enabled = false

[Log]
Level = debug
`
	require.NoError(Te, os.WriteFile(name, []byte(content), 0o644))
	c, err := ReadFile(name)
	require.NoError(Te, err)
	require.NoError(Te, c.Validate())
	o, err := c.Options(nil)
	require.NoError(Te, err)
	assert.Equal(Te, 3.2, o.Cutoff())
	assert.Equal(Te, 150.0, o.ThetaMin())
	assert.Equal(Te, 180.0, o.ThetaMax())
	assert.Equal(Te, "Te", o.Center())
	assert.True(Te, o.MIC())
	assert.Equal(Te, box.PBC{true, true, false}, o.PBC())
	assert.Equal(Te, 5, o.Skip())
	assert.Equal(Te, 2, o.Cpus())
	assert.False(Te, o.Occupancy())
	_, err = ReadFile(filepath.Join(Te.TempDir(), "nothere.ini"))
	assert.Error(Te, err)
}

func TestValidate(Te *testing.T) {
	c := DefaultConfig()
	require.NoError(Te, c.Validate())
	c.Input.Format = "pdb"
	assert.Error(Te, c.Validate())
	c = DefaultConfig()
	c.Analysis.ThetaMin = 190
	err := c.Validate()
	assert.True(Te, errors.Is(err, altbc.ErrBadAngles))
	c = DefaultConfig()
	c.Analysis.PBC = "T T"
	assert.Error(Te, c.Validate())
	c = DefaultConfig()
	c.Log.Level = "loud"
	assert.Error(Te, c.Validate())
	c = DefaultConfig()
	c.Analysis.Stride = 0
	assert.Error(Te, c.Validate())
	_, err = ReadString("[Analysis]\nCutof = 3\n")
	assert.Error(Te, err, "unknown variables are errors")
}
