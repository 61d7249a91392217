package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSet(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"only blanks", []string{"", "  "}, []string{}},
		{"case and whitespace", []string{"  Organizer ", "organizer", "ADMIN"}, []string{"organizer", "admin"}},
		{"order kept", []string{"attendee", "admin", "attendee"}, []string{"attendee", "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSet(tt.in))
		})
	}
}
