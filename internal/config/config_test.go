package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/halvardct/lrforge/internal/parse"
	"github.com/stretchr/testify/assert"
)

func writeTOML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "options.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %s", err.Error())
	}
	return path
}

func Test_Load_parsesAllFields(t *testing.T) {
	assert := assert.New(t)

	path := writeTOML(t, `
wrap_general_start = true
allow_ambiguous_grammar = true
recovery_mode = "follow"
extra_sync_symbols = ["rparen", "semicolon"]
`)

	opts, err := Load(path)
	assert.NoError(err)
	assert.True(opts.WrapGeneralStart)
	assert.True(opts.AllowAmbiguousGrammar)
	assert.Equal("follow", opts.RecoveryMode)
	assert.Equal([]string{"rparen", "semicolon"}, opts.ExtraSyncSymbols)
}

func Test_Load_missingFileIsError(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(err)
}

func Test_GeneratorOptions_GrammarOptions_defaultsToUnwrapped(t *testing.T) {
	assert := assert.New(t)

	var opts GeneratorOptions
	assert.False(opts.GrammarOptions().WrapGeneralStart)
}

func Test_GeneratorOptions_ParserOptions_defaultsToFixedSet(t *testing.T) {
	assert := assert.New(t)

	var opts GeneratorOptions
	parserOpts := opts.ParserOptions()
	assert.Equal(parse.RecoverFixedSet, parserOpts.RecoveryMode)
	assert.Equal(parse.DefaultFixedSyncSet, parserOpts.FixedSyncSet)
}

func Test_GeneratorOptions_ParserOptions_selectsFollowDerived(t *testing.T) {
	assert := assert.New(t)

	opts := GeneratorOptions{RecoveryMode: "follow"}
	parserOpts := opts.ParserOptions()
	assert.Equal(parse.RecoverFollowDerived, parserOpts.RecoveryMode)
}

func Test_GeneratorOptions_ParserOptions_appendsExtraSyncSymbols(t *testing.T) {
	assert := assert.New(t)

	opts := GeneratorOptions{ExtraSyncSymbols: []string{"rparen"}}
	parserOpts := opts.ParserOptions()
	assert.Contains(parserOpts.FixedSyncSet, "rparen")
	for _, sym := range parse.DefaultFixedSyncSet {
		assert.Contains(parserOpts.FixedSyncSet, sym)
	}
}
