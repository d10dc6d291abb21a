//go:build !prometheus
// +build !prometheus

package server

// observeMetrics is a no-op in builds without the prometheus tag, so
// the server loop can call it unconditionally regardless of build.
func (s *Server) observeMetrics() {}
