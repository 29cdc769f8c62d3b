package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/imarsman/precisestamp"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	offset := flag.String("offset", "", "Default offset when input has no timezone, e.g. +05:30")
	culture := flag.String("culture", "", "Culture for the second matching pass, e.g. de-DE")
	verbose := flag.Bool("v", false, "Log cascade stages")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(2)
		}
	}
	defer logger.Sync()

	config := &precisestamp.Config{}
	if *configPath != "" {
		var err error
		config, err = precisestamp.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("failed to load configuration", zap.Error(err))
		}
	}
	if *offset != "" {
		config.DefaultOffset = *offset
	}
	if *culture != "" {
		config.Culture = *culture
	}

	parser, err := precisestamp.NewParserFromConfig(config, precisestamp.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	failed := false
	for _, input := range flag.Args() {
		ts, err := parser.Parse(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", input, err)
			failed = true
			continue
		}
		ots, err := parser.ParseOffset(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", input, err)
			failed = true
			continue
		}
		offsetText, _ := precisestamp.LocationOffsetStringDelimited(ots.Offset())
		fmt.Printf("%s\n  naive   %s kind=%s ticks=%d\n  offset  %s offset=%s\n",
			input, ts, ts.Kind, ts.Ticks(), ots, offsetText)
	}

	if failed {
		os.Exit(1)
	}
}
