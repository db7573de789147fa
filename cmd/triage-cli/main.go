package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/adapters/ingest"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/di"
	"github.com/mikey/inbox-triage/internal/ports"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run triages the emails named on the command line, or a single email read
// from -file/stdin.
func run(logger *zap.Logger, flags *di.CLIFlags, ingestor ports.EmailIngestor) error {
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	files := flag.Args()
	if len(files) > 1 {
		cli, ok := ingestor.(*ingest.CLIIngest)
		if !ok {
			return fmt.Errorf("batch mode requires the cli ingest type")
		}
		records := make([]core.EmailRecord, 0, len(files))
		for _, path := range files {
			record, err := readEmail(path, logger)
			if err != nil {
				return err
			}
			records = append(records, *record)
		}
		_, err := cli.RunBatch(ctx, records)
		return err
	}

	path := flags.InputFile
	if len(files) == 1 {
		path = files[0]
	}
	record, err := readEmail(path, logger)
	if err != nil {
		return err
	}

	_, err = ingestor.ProcessEmail(ctx, record)
	return err
}

// readEmail parses one email from a file, or stdin when path is empty
func readEmail(path string, logger *zap.Logger) (*core.EmailRecord, error) {
	if path == "" {
		logger.Info("Reading email from stdin")
		return ingest.ParseEmail(bufio.NewReader(os.Stdin), time.Now())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	defer file.Close()

	logger.Info("Reading email from file", zap.String("file", path))
	return ingest.ParseEmail(bufio.NewReader(file), time.Now())
}
