// Package configmanager loads the settings of the eks CLI.
//
// Settings are resolved from, in increasing priority: built-in defaults, the optional
// ~/.eks/settings.yaml file, EKS_ prefixed environment variables and the persistent
// flags of the root command.
package configmanager
