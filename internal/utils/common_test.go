package utils

import (
	"reflect"
	"testing"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{"", []string{}},
		{" , ", []string{}},
	}
	for _, tt := range tests {
		got := SplitAndTrim(tt.in, ",")
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitAndTrim(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBoolFromString(t *testing.T) {
	tests := map[string]bool{
		"1":     true,
		"true":  true,
		"TRUE":  true,
		" yes ": true,
		"on":    true,
		"0":     false,
		"false": false,
		"":      false,
		"nope":  false,
	}
	for in, want := range tests {
		if got := BoolFromString(in); got != want {
			t.Errorf("BoolFromString(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := map[string]string{
		"todo":         "todo",
		" In Progress": "in-progress",
		"in_progress":  "in-progress",
		"IN--PROGRESS": "in-progress",
		"":             "",
	}
	for in, want := range tests {
		if got := NormalizeToken(in); got != want {
			t.Errorf("NormalizeToken(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"/", ""},
		{"/status", "status"},
		{"#/tags/1", "tags[1]"},
		{"/a/0/b", "a[0].b"},
		{"/a~1b/c~0d", "a/b.c~d"},
	}
	for _, tt := range tests {
		if got := JSONPointerToPath(tt.ptr); got != tt.want {
			t.Errorf("JSONPointerToPath(%q): got %q, want %q", tt.ptr, got, tt.want)
		}
	}
}
