package main

import "flag"

// dia-fuzz [-mode client] [-applications a.dia,b.dia] [-search-path ./specs]
//          [-transport tcp|sctp] [-remote host:port] [-local-host h] [-local-realm r]
//          [-config fuzzer.yaml]
type CommandLineArguments struct {
	Mode         string
	Applications string
	SearchPath   string
	Transport    string
	Remote       string
	LocalHost    string
	LocalRealm   string
	VendorID     uint
	ConfigFile   string
}

func ProcessCommandLineArguments() *CommandLineArguments {
	a := &CommandLineArguments{}

	flag.StringVar(&a.Mode, "mode", "client", "client (the only supported mode; clientloop and server are rejected)")
	flag.StringVar(&a.Applications, "applications", "", "comma-separated .dia application files defining the target's dictionary")
	flag.StringVar(&a.SearchPath, "search-path", "./specs", "comma-separated directories searched for @inherits modules")
	flag.StringVar(&a.Transport, "transport", "tcp", "tcp or sctp")
	flag.StringVar(&a.Remote, "remote", "127.0.0.1:3868", "target host:port")
	flag.StringVar(&a.LocalHost, "local-host", "", "asserted Origin-Host (overrides -config)")
	flag.StringVar(&a.LocalRealm, "local-realm", "", "asserted Origin-Realm (overrides -config)")
	flag.UintVar(&a.VendorID, "vendor-id", 0, "asserted Vendor-Id (overrides -config)")
	flag.StringVar(&a.ConfigFile, "config", "", "optional YAML defaults file")

	flag.Parse()
	return a
}
