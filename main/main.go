package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/jessevdk/go-flags"

	"github.com/cloudfoundry/bosh-chksum/cmd"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
	boshuuid "github.com/cloudfoundry/bosh-chksum/uuid"
)

const mainLogTag = "main"

func main() {
	os.Exit(run())
}

func run() int {
	var opts cmd.Options

	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "bosh-chksum"

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}

	level, err := boshlog.Levelify(opts.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return 2
	}

	logger := boshlog.NewAsyncWriterLogger(level, os.Stderr)
	defer logger.FlushTimeout(5 * time.Second) //nolint:errcheck
	defer logger.HandlePanic(mainLogTag)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := boshsys.NewOsFileSystem(logger)
	runner := cmd.NewRunner(fs, boshuuid.NewGenerator(), clock.NewClock(), os.Stdin, os.Stdout, logger)

	err = runner.Run(ctx, opts)
	if err != nil {
		logger.Error(mainLogTag, "Running bosh-chksum: %s", err)
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck

		var usageErr cmd.UsageError
		if errors.As(err, &usageErr) {
			return 2
		}
		return 1
	}

	return 0
}
