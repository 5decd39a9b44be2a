package main

import "flag"

// dia-avp-sweep [-applications a.dia] [-remote host:port] [-min N] [-max N] [-vendor N]
type CommandLineArguments struct {
	Applications string
	SearchPath   string
	Transport    string
	Remote       string
	LocalHost    string
	LocalRealm   string
	MinCode      uint
	MaxCode      uint
	VendorID     uint
	ConfigFile   string
}

func ProcessCommandLineArguments() *CommandLineArguments {
	a := &CommandLineArguments{}

	flag.StringVar(&a.Applications, "applications", "", "comma-separated .dia application files defining the target's dictionary")
	flag.StringVar(&a.SearchPath, "search-path", "./specs", "comma-separated directories searched for @inherits modules")
	flag.StringVar(&a.Transport, "transport", "tcp", "tcp or sctp")
	flag.StringVar(&a.Remote, "remote", "127.0.0.1:3868", "target host:port")
	flag.StringVar(&a.LocalHost, "local-host", "", "asserted Origin-Host (overrides -config)")
	flag.StringVar(&a.LocalRealm, "local-realm", "", "asserted Origin-Realm (overrides -config)")
	flag.UintVar(&a.MinCode, "min", 0, "first AVP code to try, inclusive")
	flag.UintVar(&a.MaxCode, "max", 1<<24, "last AVP code to try, exclusive")
	flag.UintVar(&a.VendorID, "vendor", 0, "Vendor-Id to stamp on every synthetic AVP")
	flag.StringVar(&a.ConfigFile, "config", "", "optional YAML defaults file")

	flag.Parse()
	return a
}
