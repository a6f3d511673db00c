package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_BadExpressionFailsUpFront(t *testing.T) {
	_, err := Compile([]string{`Name == `})
	assert.Error(t, err)
}

func TestCompile_NonBoolRejected(t *testing.T) {
	_, err := Compile([]string{`Name`})
	assert.Error(t, err)
}

func TestCheckFolderSingleMatch(t *testing.T) {
	exprs, err := Compile([]string{
		`Archives == 0`,
		`Key == "berserk"`,
	})
	require.NoError(t, err)

	match, reason, err := CheckFolderSingleMatchWithReason(Folder{Name: "Berserk (1989)", Key: "berserk", Archives: 12}, exprs)
	require.NoError(t, err)
	assert.True(t, match)
	assert.Equal(t, `Key == "berserk"`, reason)

	match, _, err = CheckFolderSingleMatchWithReason(Folder{Name: "Monster", Key: "monster", Archives: 18}, exprs)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestFolder_Matches(t *testing.T) {
	exprs, err := Compile([]string{`Matches("^berserk")`})
	require.NoError(t, err)

	// matching is case-insensitive against the folder name
	match, err := CheckFolderSingleMatch(Folder{Name: "Berserk (1989)"}, exprs)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CheckFolderSingleMatch(Folder{Name: "Vinland Saga"}, exprs)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestFolder_MatchesLookahead(t *testing.T) {
	// lookarounds are supported in filter patterns
	exprs, err := Compile([]string{`Matches("^berserk(?! gaiden)")`})
	require.NoError(t, err)

	match, err := CheckFolderSingleMatch(Folder{Name: "Berserk"}, exprs)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CheckFolderSingleMatch(Folder{Name: "Berserk Gaiden"}, exprs)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestFolder_MatchesInvalidPattern(t *testing.T) {
	assert.False(t, Folder{Name: "Berserk"}.Matches("(unclosed"))
}
