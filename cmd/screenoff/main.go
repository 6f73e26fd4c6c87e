// Package main starts the ScreenOff tray application.
package main

import "flag"

// options holds the parsed command line.
type options struct {
	debug bool
	list  bool
	send  string
	id    string
}

// main is the entrypoint for ScreenOff.
func main() {
	var opts options
	flag.BoolVar(&opts.debug, "debug", false, "Enable verbose debug logging")
	flag.BoolVar(&opts.list, "list", false, "Print detected monitors and exit")
	flag.StringVar(&opts.send, "send", "", "Send toggle, enable, disable, state or secondary to the running instance and exit")
	flag.StringVar(&opts.id, "id", "", "Monitor id for -send secondary")
	flag.Parse()

	if err := run(opts); err != nil {
		logFatal(err)
	}
}
