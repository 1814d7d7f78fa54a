package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStore_cmds(t *testing.T) {
	s, _ := openTemp(t)

	seq, err := s.NextCmdSeq()
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	for i, text := range []string{"1 2 +", "dup", "let X ( 3 )", "X"} {
		seq, err := s.AddCmd(text)
		require.NoError(t, err)
		assert.Equal(t, i+1, seq)
	}

	seq, err = s.NextCmdSeq()
	require.NoError(t, err)
	assert.Equal(t, 5, seq)

	cmds, err := s.CmdsWithSeq(2, 4)
	require.NoError(t, err)
	assert.Equal(t, []Cmd{{"dup", 2}, {"let X ( 3 )", 3}}, cmds)

	cmds, err = s.Recent(2)
	require.NoError(t, err)
	assert.Equal(t, []Cmd{{"let X ( 3 )", 3}, {"X", 4}}, cmds)

	cmds, err = s.Recent(10)
	require.NoError(t, err)
	assert.Len(t, cmds, 4)
	assert.Equal(t, "1 2 +", cmds[0].Text)
}

func TestStore_reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.AddCmd("#persisted")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	cmds, err := s.Recent(5)
	require.NoError(t, err)
	assert.Equal(t, []Cmd{{"#persisted", 1}}, cmds)
}

func TestStore_empty(t *testing.T) {
	s, _ := openTemp(t)
	cmds, err := s.Recent(3)
	require.NoError(t, err)
	assert.Empty(t, cmds)
}
