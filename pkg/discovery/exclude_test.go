package discovery_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/gitpulse/pkg/discovery"
)

func TestIsExcluded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"exact segment", "/home/user/node_modules/proj", []string{"node_modules"}, true},
		{"substring of segment", "/home/user/__cache__/proj", []string{"cache"}, true},
		{"over-exclusion by substring", "/srv/gitops/deploy", []string{"git"}, true},
		{"no match", "/home/user/src/proj", []string{"node_modules", "venv"}, false},
		{"empty pattern set", "/home/user/node_modules", nil, false},
		{"case sensitive", "/home/user/Node_Modules/proj", []string{"node_modules"}, false},
		{"pattern spanning segments", "/home/user/proj", []string{"user/proj"}, false},
		{"empty pattern ignored", "/home/user/proj", []string{""}, false},
		{"trailing separator", "/home/user/venv/", []string{"venv"}, true},
		{"relative path", "work/venv/lib", []string{"venv"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, discovery.IsExcluded(filepath.FromSlash(tt.path), tt.patterns))
		})
	}
}

func TestSegments(t *testing.T) {
	t.Parallel()

	got := discovery.Segments(filepath.FromSlash("/home/user/node_modules/proj/"))
	assert.Equal(t, []string{"home", "user", "node_modules", "proj"}, got)

	assert.Empty(t, discovery.Segments(string(filepath.Separator)))
}

func TestNewExcludeRules(t *testing.T) {
	t.Parallel()

	rules := discovery.NewExcludeRules([]string{"", "venv", ""})
	assert.Equal(t, discovery.ExcludeRules{"venv"}, rules)

	assert.True(t, rules.Excludes(filepath.FromSlash("/a/venv/b")))
	assert.False(t, rules.Excludes(filepath.FromSlash("/a/b")))
	assert.False(t, discovery.ExcludeRules(nil).Excludes(filepath.FromSlash("/a/venv")))
}
