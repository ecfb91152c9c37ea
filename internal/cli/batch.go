package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/polyfrost/oneconfig/command"
	"github.com/polyfrost/oneconfig/internal/utils"
)

const (
	batchUse              = "batch <script>"
	batchShortDescription = "run every command line of a script"
	batchLongDescription  = `Run each non-blank line of a script as one command line. Lines starting with # are comments.
Lines run concurrently and results print in script order. Use - to read the script from standard input.`
	batchStandardInput           = "-"
	concurrencyFlagName          = "concurrency"
	concurrencyFlagDescription   = "maximum number of lines running at once"
	stopOnErrorFlagName          = "stop-on-error"
	stopOnErrorFlagDescription   = "skip lines that have not started once a line fails"
	batchLineErrorTemplate       = "line %d: %w"
	batchFailureOutputTemplate   = "line %d: " + utils.ErrorLogFormat + "\n"
	invalidConcurrencyErrMessage = "concurrency must be at least 1"
)

// scriptLine is one command line of a batch script.
type scriptLine struct {
	number int
	tokens []string
}

// lineOutcome holds what running one line produced.
type lineOutcome struct {
	result  any
	err     error
	skipped bool
}

type batchOptions struct {
	concurrency int
	stopOnError bool
}

func createBatchCommand(runtime *application) *cobra.Command {
	options := &batchOptions{}
	var stopOnErrorToggle *toggleFlag
	batchCommand := &cobra.Command{
		Use:   batchUse,
		Short: batchShortDescription,
		Long:  batchLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCommand *cobra.Command, arguments []string) error {
			concurrency := runtime.configuration.Batch.ConcurrencyOrDefault()
			if cobraCommand.Flags().Changed(concurrencyFlagName) {
				concurrency = options.concurrency
			}
			stopOnError := stopOnErrorToggle.resolve(runtime.configuration.Batch.StopOnError)
			if concurrency < 1 {
				return errors.New(invalidConcurrencyErrMessage)
			}

			lines, readError := readScript(cobraCommand.InOrStdin(), arguments[0])
			if readError != nil {
				return readError
			}
			manager, managerError := runtime.manager()
			if managerError != nil {
				return managerError
			}
			outcomes := runScript(cobraCommand.Context(), manager, lines, concurrency, stopOnError)
			return reportOutcomes(cobraCommand.OutOrStdout(), cobraCommand.ErrOrStderr(), lines, outcomes)
		},
	}
	batchCommand.Flags().IntVar(&options.concurrency, concurrencyFlagName, 0, concurrencyFlagDescription)
	stopOnErrorToggle = registerToggleFlag(batchCommand.Flags(), &options.stopOnError, stopOnErrorFlagName, false, stopOnErrorFlagDescription)
	return batchCommand
}

func readScript(standardInput io.Reader, path string) ([]scriptLine, error) {
	reader := standardInput
	if path != batchStandardInput {
		file, openError := os.Open(path)
		if openError != nil {
			return nil, fmt.Errorf("open script %s: %w", path, openError)
		}
		defer file.Close()
		reader = file
	}

	var lines []scriptLine
	scanner := bufio.NewScanner(reader)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		text := scanner.Text()
		if utils.IsCommentOrBlank(text) {
			continue
		}
		tokens, splitError := utils.SplitCommandLine(text)
		if splitError != nil {
			return nil, fmt.Errorf(batchLineErrorTemplate, lineNumber, splitError)
		}
		lines = append(lines, scriptLine{number: lineNumber, tokens: tokens})
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("read script %s: %w", path, scanError)
	}
	return lines, nil
}

// runScript executes lines with at most concurrency in flight. With stopOnError the
// first failure cancels the group and lines that have not started are skipped.
func runScript(ctx context.Context, manager *command.Manager, lines []scriptLine, concurrency int, stopOnError bool) []lineOutcome {
	if ctx == nil {
		ctx = context.Background()
	}
	outcomes := make([]lineOutcome, len(lines))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for index, line := range lines {
		group.Go(func() error {
			if stopOnError && groupContext.Err() != nil {
				outcomes[index] = lineOutcome{skipped: true}
				return nil
			}
			result, executeError := manager.Execute(line.tokens)
			outcomes[index] = lineOutcome{result: result, err: executeError}
			if executeError != nil && stopOnError {
				return executeError
			}
			return nil
		})
	}
	_ = group.Wait()
	return outcomes
}

func reportOutcomes(output io.Writer, errorOutput io.Writer, lines []scriptLine, outcomes []lineOutcome) error {
	var failures []error
	for index, outcome := range outcomes {
		switch {
		case outcome.skipped:
			continue
		case outcome.err != nil:
			fmt.Fprintf(errorOutput, batchFailureOutputTemplate, lines[index].number, outcome.err)
			failures = append(failures, fmt.Errorf(batchLineErrorTemplate, lines[index].number, outcome.err))
		default:
			printResult(output, outcome.result)
		}
	}
	return errors.Join(failures...)
}
