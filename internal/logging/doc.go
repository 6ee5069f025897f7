// Package logging provides structured logging built on zap.
//
// All packages receive a *Logger through their constructors; nothing in the
// bridge logs through the global zap logger.
package logging
