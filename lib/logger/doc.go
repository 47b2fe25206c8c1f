// Package logger provides named, leveled loggers for all packages of this
// repository.
//
// Loggers are obtained by name via GetLogger and format each line as
//
//	DATE TIME LEVEL | name | message
//
// The level of every logger can be adjusted at once with SetGlobalLevel,
// which the CLI does after parsing its --log-level flag.
package logger
