// Package logging builds the log/slog logger shared by the application and
// the Fx container. Output is JSON unless the text format is requested.
package logging
