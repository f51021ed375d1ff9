package hook

import (
	"reflect"
	"testing"
)

func TestEditedPaths(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want []string
	}{
		{
			name: "edit_tool",
			data: map[string]any{
				"tool_name":  "Edit",
				"tool_input": map[string]any{"file_path": "/repo/a.go"},
			},
			want: []string{"/repo/a.go"},
		},
		{
			name: "write_tool",
			data: map[string]any{
				"tool_name":  "Write",
				"tool_input": map[string]any{"file_path": "/repo/b.go"},
			},
			want: []string{"/repo/b.go"},
		},
		{
			name: "non_edit_tool",
			data: map[string]any{
				"tool_name":  "Bash",
				"tool_input": map[string]any{"command": "rm -rf /"},
			},
			want: nil,
		},
		{
			name: "missing_input",
			data: map[string]any{"tool_name": "Edit"},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := editedPaths(tt.data); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("editedPaths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCleanPrompt(t *testing.T) {
	in := "<ide_selection>stuff</ide_selection>  do the thing  "
	if got := cleanPrompt(in); got != "do the thing" {
		t.Errorf("cleanPrompt = %q", got)
	}
}

func TestResetArgs(t *testing.T) {
	tests := []struct {
		name string
		opts ResetOptions
		want []string
	}{
		{
			name: "soft_with_target",
			opts: ResetOptions{Mode: "soft", Target: "HEAD^"},
			want: []string{"reset", "--soft", "HEAD^"},
		},
		{
			name: "hard",
			opts: ResetOptions{Mode: "hard", Target: "HEAD"},
			want: []string{"reset", "--hard", "HEAD"},
		},
		{
			name: "pathspec_drops_mode_flag",
			opts: ResetOptions{Mode: "mixed", Target: "HEAD", Paths: []string{"a.txt"}},
			want: []string{"reset", "HEAD", "--", "a.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resetArgs(tt.opts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resetArgs = %v, want %v", got, tt.want)
			}
		})
	}
}
