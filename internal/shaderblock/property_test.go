package shaderblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{`_Color ("Color", Color) = (1,1,1,1)`, "_Color", true},
		{`_Color("Color", Color) = (1,1,1,1)`, "_Color", true},
		{`   _BaseMap ("BaseMap", 2D) = "white" {}`, "_BaseMap", true},
		{`[HideInInspector] _simpleUI ("SimpleUI", Int ) = 0`, "_simpleUI", true},
		{`[Toggle(_)][HideInInspector] _Flag ("Flag", Float) = 0`, "_Flag", true},
		{`[Enum(OFF, 0, ON, 1)] _ZWrite ("ZWrite", Float) = 1`, "_ZWrite", true},
		{`[HDR]_Emissive_Color ("Emissive", Color) = (0,0,0,1)`, "_Emissive_Color", true},
		{`// _Commented ("C", Float) = 0`, "", false},
		{``, "", false},
		{`   `, "", false},
		{`[Header(Outline)]`, "", false},
		{`= 0`, "", false},
		{`9Bad ("B", Float) = 0`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ParseName(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseName_LastMatchWins(t *testing.T) {
	got, ok := ParseName(`_First ("a", Float) = 0 ] _Second ("b", Float) = 0`)
	assert.True(t, ok)
	assert.Equal(t, "_Second", got)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(`[HideInInspector] _X ("X", Float) = 0`))
	assert.True(t, IsHidden(`[Toggle][HideInInspector]_X ("X", Float) = 0`))
	assert.False(t, IsHidden(`_X ("X", Float) = 0`))
	assert.False(t, IsHidden(`[hideininspector] _X ("X", Float) = 0`))
}
