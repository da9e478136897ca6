// Package logging provides structured logging for nativecore and the
// ordered severity enumeration shared by the CLI logger and the native
// components it loads.
//
// By default logs go to stderr only. With --debug, JSON logs are also
// written with rotation to ~/.nativecore/logs/.
package logging
