package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoutine(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"S&C: Core Focus, 30 mins", "routine_1_core"},
		{"Strength: Lower Body", "routine_2_lower_body"},
		{"S&C Routine A (Core)", "routine_1_core"},
		{"Strength-focused full body circuit", "routine_4_circuit"},
		{"S&C: something novel", ""},
		{"Easy run, 45 mins", ""},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRoutine(tt.description))
		})
	}
}
