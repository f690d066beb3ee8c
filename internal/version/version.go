// Package version holds the cnav build version.
package version

// Version is the current cnav version
var Version = "0.3.0"
