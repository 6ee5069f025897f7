// Command bridge runs the local presence bridge daemon: it connects to the
// companion process's activity socket, republishes enriched activities to
// the host's presence bus, relays prefixed chat messages over the text
// bridge, and serves the local admin surface.
package main
