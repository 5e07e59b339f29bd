package logs

import (
	"fmt"

	"github.com/atlanticdynamic/hostbridge/internal/fancy"
)

// String returns a string representation of the log configuration
func (lc *Config) String() string {
	return fmt.Sprintf("Log Config: format=%s, level=%s, output=%s", lc.Format, lc.Level, lc.Output)
}

// ToTree returns a tree visualization of the log configuration
func (lc *Config) ToTree() *fancy.ComponentTree {
	tree := fancy.NewComponentTree("Logging")

	tree.AddChild(fmt.Sprintf("Format: %s", orDefault(lc.Format.String(), "text")))
	tree.AddChild(fmt.Sprintf("Level: %s", orDefault(lc.Level.String(), "info")))
	tree.AddChild(fmt.Sprintf("Output: %s", orDefault(lc.Output, "stderr")))

	return tree
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
