package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func osRule(action, name string) Rule {
	return Rule{Action: action, OS: &OSRule{Name: name}}
}

func TestIncluded(t *testing.T) {
	allow := Rule{Action: ActionAllow}
	disallowAll := Rule{Action: ActionDisallow}

	tests := []struct {
		name     string
		rules    []Rule
		platform string
		want     bool
	}{
		{"no rules", nil, "linux", true},
		{"empty rules", []Rule{}, "windows", true},
		{"allow", []Rule{allow}, "linux", true},
		{"allow other os", []Rule{osRule(ActionAllow, "windows")}, "linux", false},
		{"allow same os", []Rule{osRule(ActionAllow, "windows")}, "windows", true},
		{"later os allow wins", []Rule{allow, osRule(ActionAllow, "windows")}, "linux", false},
		{"later allow restores", []Rule{osRule(ActionAllow, "windows"), allow}, "linux", true},
		{"disallow same os", []Rule{allow, osRule(ActionDisallow, "linux")}, "linux", false},
		{"disallow other os", []Rule{allow, osRule(ActionDisallow, "darwin")}, "linux", true},
		{"osx alias", []Rule{allow, osRule(ActionDisallow, "osx")}, "darwin", false},
		{"disallow without os", []Rule{allow, disallowAll}, "linux", true},
		{"os without name", []Rule{{Action: ActionAllow, OS: &OSRule{}}}, "linux", false},
		{"unknown os", []Rule{osRule(ActionAllow, "plan9")}, "linux", false},
		{"unknown action", []Rule{{Action: "maybe"}}, "linux", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Included(tt.rules, tt.platform))
		})
	}
}
