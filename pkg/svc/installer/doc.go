// Package installer provides functionality for installing and uninstalling cluster add-ons.
//
// This package defines the Installer interface and a factory selecting the day-1 add-ons
// (GPU device plugin, default storage class, DNS autoscaler, CNI tuning) applied to new clusters.
package installer
