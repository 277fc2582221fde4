// Package executor runs algorithm and view containers. The rest of dpctl
// only sees the Executor interface: an image, its volumes and environment
// go in, an exit code and the captured log come out.
package executor
