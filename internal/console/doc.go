// Package console renders download progress events in a terminal.
//
// Messages are colored by level, verbose messages are shown only in
// verbose mode, and file transfers get a pb progress bar when stdout is a
// terminal. Every message, verbose or not, can also be appended to a log
// file:
//
//	out, err := console.New(console.Options{Verbose: true, LogFile: "discdl.log"})
//	defer out.Close()
//	manager := download.NewManager(settings, out.Handle)
package console
