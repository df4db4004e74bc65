package plugins

import (
	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/plugins/bbolt"
	"github.com/jrife/tally/storage/kv/plugins/memory"
	"github.com/jrife/tally/storage/kv/plugins/postgres"
	"github.com/jrife/tally/storage/kv/plugins/sqlite"
)

var plugins []kv.Plugin

func init() {
	plugins = append(plugins, bbolt.Plugins()...)
	plugins = append(plugins, memory.Plugins()...)
	plugins = append(plugins, sqlite.Plugins()...)
	plugins = append(plugins, postgres.Plugins()...)
}

// Plugin returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func Plugin(name string) kv.Plugin {
	for _, plugin := range plugins {
		if plugin.Name() == name {
			return plugin
		}
	}

	return nil
}

// Plugins lists all the plugins that are available
func Plugins() []kv.Plugin {
	return plugins
}
