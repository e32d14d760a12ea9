package generation

import (
	"reflect"
	"testing"
)

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{
			name:   "short words are dropped",
			prompt: "a cat in space",
			want:   []string{"cat", "space"},
		},
		{
			name:   "capped at five tags",
			prompt: "sunset mountain forest river ocean desert valley",
			want:   []string{"sunset", "mountain", "forest", "river", "ocean"},
		},
		{
			name:   "duplicates and case are preserved",
			prompt: "Cat cat CAT",
			want:   []string{"Cat", "cat", "CAT"},
		},
		{
			name:   "all words too short",
			prompt: "a an of to",
			want:   []string{},
		},
		{
			name:   "extra whitespace",
			prompt: "  neon   city \t night ",
			want:   []string{"neon", "city", "night"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTags(tt.prompt)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeriveTags(%q) = %v, want %v", tt.prompt, got, tt.want)
			}
		})
	}
}
