// Package logx is pewsched's structured logging on top of zerolog.
//
// A Service owns the sinks (readable console output, JSON file) and can
// swap them at runtime; every Logger obtained from it follows the swap.
// Loggers carry fixed fields via With and record a short file:line caller.
//
// The schedule package never logs; only the host services do.
package logx
