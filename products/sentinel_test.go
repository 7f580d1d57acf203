package products

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slcName = "S1A_IW_SLC__1SDV_20200101T050000_20200101T050027_030600_0381B2_ABCD"

func TestParseProduct(t *testing.T) {
	for _, name := range []string{
		slcName,
		slcName + ".SAFE",
		slcName + ".zip",
		"/data/in/" + slcName + ".SAFE/",
	} {
		p, err := ParseProduct(name)
		require.NoError(t, err, name)
		assert.Equal(t, slcName, p.Name)
		assert.Equal(t, "S1A", p.Mission)
		assert.Equal(t, "IW", p.Mode)
		assert.Equal(t, "SLC", p.ProductType)
		assert.Equal(t, 30600, p.AbsoluteOrbit)
		assert.Equal(t, time.Date(2020, 1, 1, 5, 0, 0, 0, time.UTC), p.StartTime)
		assert.Equal(t, time.Date(2020, 1, 1, 5, 0, 27, 0, time.UTC), p.StopTime)
	}
}

func TestParseProduct_Window(t *testing.T) {
	p, err := ParseProduct("S1B_EW_GRDM_1SDH_20210301T101010_20210301T101110_025901_031755_1A2B")
	require.NoError(t, err)
	assert.Equal(t, "GRD", p.ProductType)
	assert.Equal(t, 25901, p.AbsoluteOrbit)

	w := p.Window()
	assert.Equal(t, p.StartTime, w.Start)
	assert.Equal(t, p.StopTime, w.End)
}

func TestParseProduct_AbsoluteOrbitLeadingZeros(t *testing.T) {
	p, err := ParseProduct("S1A_IW_RAW__0SDV_20140415T000000_20140415T000030_000007_000001_FFFF")
	require.NoError(t, err)
	assert.Equal(t, 7, p.AbsoluteOrbit)
}

func TestParseProduct_Rejects(t *testing.T) {
	for _, name := range []string{
		"",
		"README.md",
		"S1A_OPER_AUX_POEORB_OPOD_20200121T120654_V20191231T225942_20200102T005942.EOF",
	} {
		_, err := ParseProduct(name)
		assert.True(t, errors.Is(err, ErrNotProduct), name)
	}
}

func TestFindProducts(t *testing.T) {
	dir := t.TempDir()
	second := "S1B_IW_SLC__1SDV_20200102T050000_20200102T050027_019700_025372_FFFF.zip"
	require.NoError(t, os.Mkdir(filepath.Join(dir, slcName+".SAFE"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, second), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	found, err := FindProducts(dir)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, slcName, found[0].Name)
	assert.Equal(t, "S1B", found[1].Mission)

	_, err = FindProducts(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
