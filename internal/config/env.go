package config

import "os"

// LookupFunc has the signature of os.LookupEnv so tests can inject a map.
type LookupFunc func(key string) (string, bool)

// OSLookup reads the process environment.
var OSLookup LookupFunc = os.LookupEnv

// Environment variables consulted by Load.
const (
	EnvLogLevel    = "DPCTL_LOG_LEVEL"
	EnvLogFormat   = "DPCTL_LOG_FORMAT"
	EnvLogFile     = "DPCTL_LOG_FILE"
	EnvDockerBin   = "DPCTL_DOCKER_BIN"
	EnvPropagation = "DPCTL_PROPAGATION"
)

func (c *Config) applyEnv(lookup LookupFunc) {
	if lookup == nil {
		return
	}
	c.Log.Level = envString(lookup, EnvLogLevel, c.Log.Level)
	c.Log.Format = envString(lookup, EnvLogFormat, c.Log.Format)
	c.Log.File = envString(lookup, EnvLogFile, c.Log.File)
	c.Executor.DockerBin = envString(lookup, EnvDockerBin, c.Executor.DockerBin)
	c.Propagation = envString(lookup, EnvPropagation, c.Propagation)
}

func envString(lookup LookupFunc, key string, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}
