package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestModerator(t *testing.T, words ...string) Moderator {
	t.Helper()
	moderator, err := NewModerator(words, '*')
	require.NoError(t, err)
	return moderator
}

func TestCensor_Replaces_A_Forbidden_Word(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t, "stupid")

	// When a message contains a forbidden word
	censored, found := moderator.Censor("you are stupid sometimes")

	// Then the word is masked and reported
	req.Equal("you are ****** sometimes", censored)
	req.Equal([]string{"stupid"}, found)
}

func TestCensor_Clean_Message_Is_Untouched(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t, "stupid")

	censored, found := moderator.Censor("hello, how are you?")

	req.Equal("hello, how are you?", censored)
	req.Empty(found)
}

func TestCensor_Catches_Leet_Speak_Variants(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t, "stupid")

	// Given leet-speak obfuscation of the same word
	censored, found := moderator.Censor("you are 5tup!d")

	// Then normalization still catches it
	req.Equal("you are ******", censored)
	req.Equal([]string{"stupid"}, found)
}

func TestCensor_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t, "stupid")

	censored, found := moderator.Censor("STUPID")

	req.Equal("******", censored)
	req.Len(found, 1)
}

func TestCensor_Handles_Multiple_Hits(t *testing.T) {
	req := require.New(t)
	moderator := newTestModerator(t, "dumb", "fool")

	censored, found := moderator.Censor("dumb move, you fool")

	req.Equal("**** move, you ****", censored)
	req.Len(found, 2)
}

func TestLoadCensoredWords_Embeds_At_Least_One_Language(t *testing.T) {
	req := require.New(t)

	censored, err := LoadCensoredWords()

	req.NoError(err)
	req.NotEmpty(censored.Words)
	req.NotEmpty(censored.Languages)
}
