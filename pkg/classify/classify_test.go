package classify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func headReader(data []byte) func(int) ([]byte, error) {
	return func(n int) ([]byte, error) {
		if n > len(data) {
			n = len(data)
		}
		return data[:n], nil
	}
}

func TestClassifyAlwaysTextExtension(t *testing.T) {
	d := Classify("main.go", 100, Default(), SafetyDefault, StrategyDefault, headReader(nil))
	assert.False(t, d.Skip)
	assert.Equal(t, FullText, d.Mode)
}

func TestClassifyNeverSearchExtension(t *testing.T) {
	d := Classify("libfoo.so", 100, Default(), SafetyDefault, StrategyDefault, headReader(nil))
	assert.True(t, d.Skip)
}

func TestClassifyConditionalExtensionUsesTableMode(t *testing.T) {
	d := Classify("archive.zip", 100, Default(), SafetyDefault, StrategyDefault, headReader(nil))
	assert.False(t, d.Skip)
	assert.Equal(t, Filename, d.Mode)
}

func TestClassifyBigBinaryFileIsSkipped(t *testing.T) {
	head := bytes.Repeat([]byte{0}, magicSniffBytes)
	d := Classify("big.bin_unlisted_ext_xyz", 2048, Default(), SafetyDefault, StrategyDefault, headReader(head))
	assert.True(t, d.Skip)
	assert.Equal(t, "binary", d.Reason)
}

func TestClassifyImageNeverFullText(t *testing.T) {
	d := Classify("img.jpg", 3*1024, Default(), SafetyDefault, StrategyDefault, headReader(nil))
	assert.NotEqual(t, FullText, d.Mode)
}

func TestClassifyConservativeSafetyRestrictsToAlwaysText(t *testing.T) {
	d := Classify("archive.zip", 100, Default(), SafetyConservative, StrategyDefault, headReader(nil))
	assert.True(t, d.Skip)
}

func TestClassifyConservativeSafetyEnforcesSizeCeiling(t *testing.T) {
	d := Classify("main.go", conservativeCeiling+1, Default(), SafetyConservative, StrategyDefault, headReader(nil))
	assert.True(t, d.Skip)
}

func TestClassifyComprehensiveStrategyOverridesSkipByDefault(t *testing.T) {
	d := Classify("generated.lock", 10, Default(), SafetyDefault, StrategyComprehensive, headReader(nil))
	assert.False(t, d.Skip)
	assert.Equal(t, FullText, d.Mode)
}

func TestClassifyComprehensiveNeverOverridesNeverSearch(t *testing.T) {
	d := Classify("libfoo.so", 10, Default(), SafetyDefault, StrategyComprehensive, headReader(nil))
	assert.True(t, d.Skip)
}

func TestClassifyUnlistedExtensionSniffsMagic(t *testing.T) {
	ctx := Default()
	ctx.MagicHint = func(head []byte) string { return "text/plain; charset=utf-8" }
	d := Classify("README.unknownext", 10, ctx, SafetyDefault, StrategyDefault, headReader([]byte("hello")))
	assert.False(t, d.Skip)
	assert.Equal(t, FullText, d.Mode)
}

func TestExtHandlesDottedCompounds(t *testing.T) {
	assert.Equal(t, ".gz", Ext("archive.tar.gz"))
}

func TestClassifyPerformanceSafetyRaisesAlwaysTextLimit(t *testing.T) {
	size := int64(100 * 1024 * 1024) // above the 50 MiB default, below the 500 MiB performance ceiling
	d := Classify("main.go", size, Default(), SafetyPerformance, StrategyDefault, headReader(nil))
	assert.False(t, d.Skip)
	assert.Equal(t, FullText, d.Mode)
}

func TestClassifyPerformanceSafetyStillEnforcesItsOwnCeiling(t *testing.T) {
	d := Classify("main.go", performanceCeiling+1, Default(), SafetyPerformance, StrategyDefault, headReader(nil))
	assert.True(t, d.Skip)
}
