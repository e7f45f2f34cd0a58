package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIdentifier(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want Identifier
	}{
		{"MOOC:Kurs", "MOOC:Kurs"},
		{"mooc:kurs_1/ woche  2 ", "Mooc:Kurs 1/woche 2"},
		{"kurs//a/", "Kurs/a"},
		{"a/b:c", "A/b:c"},
		{":x", ":x"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			require.Equal(t, tt.want, NewIdentifier(tt.raw))
		})
	}
}

func TestIdentifierParts(t *testing.T) {
	t.Parallel()
	id := NewIdentifier("MOOC:Kurs/Woche 1/Lektion")

	require.Equal(t, "MOOC", id.Namespace())
	require.Equal(t, "Kurs/Woche 1/Lektion", id.Text())
	require.Equal(t, Identifier("MOOC:Kurs"), id.Root())
	require.Equal(t, Identifier("MOOC:Kurs/Woche 1"), id.Parent())
	require.Equal(t, "Lektion", id.Subpage())
	require.Equal(t, 2, id.Depth())
	require.False(t, id.IsRoot())
	require.True(t, id.IsDescendantOf("MOOC:Kurs"))
	require.False(t, id.IsDescendantOf("MOOC:Kurs/Woche"))

	root := id.Root()
	require.True(t, root.IsRoot())
	require.Equal(t, root, root.Parent())
}

func TestIdentifierChild(t *testing.T) {
	t.Parallel()
	id := NewIdentifier("MOOC:Kurs/Woche 1")
	tests := []struct {
		name string
		want Identifier
	}{
		{"Lektion", "MOOC:Kurs/Woche 1/Lektion"},
		{"lektion_2", "MOOC:Kurs/Woche 1/lektion 2"},
		{"./Quiz", "MOOC:Kurs/Woche 1/Quiz"},
		{"../Woche 2", "MOOC:Kurs/Woche 2"},
		{":MOOC:Quizze/1", "MOOC:Quizze/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, id.Child(tt.name))
		})
	}
}

func TestIdentifierURL(t *testing.T) {
	t.Parallel()
	id := NewIdentifier("MOOC:Kurs/Woche 1")
	require.Equal(t, "/wiki/MOOC:Kurs/Woche_1", id.URL("/wiki/"))
	require.Equal(t, "/MOOC:Kurs/Woche_1", id.URL(""))
}
