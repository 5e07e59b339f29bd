package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/atlanticdynamic/hostbridge/internal/fancy"
)

// String renders the configuration as a tree.
func (c *Config) String() string {
	return c.ToTree().String()
}

// ToTree returns a tree visualization of the configuration
func (c *Config) ToTree() *fancy.ComponentTree {
	tree := fancy.NewComponentTree(fancy.RootStyle.Render("hostbridge config " + c.Version))
	tree.AddChild(c.Logging.ToTree().Tree())

	engineBranch := fancy.BranchNode("Engines", fmt.Sprintf("(%d)", len(c.Engines)))
	for _, key := range slices.Sorted(maps.Keys(c.Engines)) {
		settings := c.Engines[key]
		node := fancy.Tree().Root(fancy.MIMEText(key))
		for _, k := range slices.Sorted(maps.Keys(settings)) {
			node.Child(fmt.Sprintf("%s = %v", k, settings[k]))
		}
		engineBranch.Child(node)
	}
	tree.AddChild(engineBranch)

	globals := fancy.BranchNode("Globals", fmt.Sprintf("(%d)", len(c.Globals)))
	for _, name := range slices.Sorted(maps.Keys(c.Globals)) {
		globals.Child(fmt.Sprintf("%s = %s", name, fancy.TruncateString(fmt.Sprint(c.Globals[name]), 60)))
	}
	tree.AddChild(globals)

	env := fancy.BranchNode("Environment", fmt.Sprintf("(%d)", len(c.Env.Allow)+len(c.Env.Vars)))
	for _, name := range c.Env.Allow {
		env.Child(name)
	}
	for _, name := range slices.Sorted(maps.Keys(c.Env.Vars)) {
		env.Child(fmt.Sprintf("%s = %s", name, c.Env.Vars[name]))
	}
	tree.AddChild(env)

	if c.Location != "" {
		tree.AddChild("Location: " + c.Location)
	}
	if c.AllowList != "" {
		tree.AddChild("Allow-list: " + c.AllowList)
	}
	return tree
}
