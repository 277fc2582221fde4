// Package config defines the tool-level configuration of dpctl: logging,
// the container executor and the relationship propagation mode.
//
// Values are layered: built-in defaults, then the optional .dpctl.yaml file
// at the datapackage root, then DPCTL_* environment variables. The cli
// package applies command-line flags last.
package config
