package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCreator(t *testing.T) {
	tests := []struct {
		name     string
		edge     Edge
		expected bool
	}{
		{
			name:     "writer_accepted",
			edge:     Edge{Name: "Kentarou Miura", Role: "Story & Art"},
			expected: true,
		},
		{
			name:     "occupation_accepted",
			edge:     Edge{Name: "Eiichiro Oda", Occupations: []string{"Mangaka"}},
			expected: true,
		},
		{
			name:     "translator_rejected",
			edge:     Edge{Name: "Jane Doe", Role: "Translator"},
			expected: false,
		},
		{
			name: "negative_wins_over_positive",
			edge: Edge{
				Name:        "John Smith",
				Role:        "Translator/Letterer",
				Occupations: []string{"Story & Art"},
			},
			expected: false,
		},
		{
			name:     "unknown_role_rejected_strict",
			edge:     Edge{Name: "Someone", Role: "Assistant"},
			expected: false,
		},
		{
			name:     "no_name_rejected",
			edge:     Edge{Role: "Story & Art"},
			expected: false,
		},
		{
			name:     "case_insensitive",
			edge:     Edge{Name: "A", Role: "ORIGINAL CREATOR"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCreator(tt.edge))
		})
	}
}

func TestFilterNames_StrictPass(t *testing.T) {
	edges := []Edge{
		{Name: "Author A", Role: "Story"},
		{Name: "Translator B", Role: "Translation"},
		{Name: "Artist C", Role: "Art"},
	}

	assert.Equal(t, []string{"Author A", "Artist C"}, FilterNames(edges))
}

func TestFilterNames_LooseFallback(t *testing.T) {
	// no edge passes the strict pass, so the loose pass keeps every named
	// edge without a negative keyword
	edges := []Edge{
		{Name: "Unknown Role", Role: "Assistant"},
		{Name: "Editor B", Role: "Editor"},
		{Name: ""},
	}

	assert.Equal(t, []string{"Unknown Role"}, FilterNames(edges))
}

func TestFilterNames_Empty(t *testing.T) {
	assert.Empty(t, FilterNames(nil))
	assert.Empty(t, FilterNames([]Edge{{Name: "X", Role: "Editor"}}))
}

func TestFilterNames_PreservesOrder(t *testing.T) {
	edges := []Edge{
		{Name: "B", Role: "Art"},
		{Name: "A", Role: "Story"},
	}

	assert.Equal(t, []string{"B", "A"}, FilterNames(edges))
}
