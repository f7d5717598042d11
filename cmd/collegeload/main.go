package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/cli"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(collegedata.ExitPanic)
		}
	}()

	if os.Getenv("COLLEGELOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(collegedata.ExitCodeForError(err))
	}
}
