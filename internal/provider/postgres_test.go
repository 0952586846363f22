package provider

import (
	"reflect"
	"testing"
)

func TestParseTextArray(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		want    []string
	}{
		{
			name:    "plain elements",
			literal: `{vip,billing}`,
			want:    []string{"vip", "billing"},
		},
		{
			name:    "quoted element with comma",
			literal: `{vip,"needs, escalation"}`,
			want:    []string{"vip", "needs, escalation"},
		},
		{
			name:    "escaped quote and backslash",
			literal: `{"say \"hi\"","back\\slash"}`,
			want:    []string{`say "hi"`, `back\slash`},
		},
		{
			name:    "control byte in label survives",
			literal: "{\"a\x1fb\"}",
			want:    []string{"a\x1fb"},
		},
		{
			name:    "empty array",
			literal: `{}`,
			want:    nil,
		},
		{
			name:    "null column",
			literal: "",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTextArray(tt.literal)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTextArray(%q) = %#v, want %#v", tt.literal, got, tt.want)
			}
		})
	}
}
