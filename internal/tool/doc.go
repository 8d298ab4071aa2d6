// Package tool runs the external download tools as subprocesses.
//
// Every tool invocation blocks until the process exits. Output is either
// buffered (for JSON dumps) or streamed line by line to callbacks (for
// progress reporting) while the process runs.
//
// # Basic Usage
//
//	res, err := tool.Run(ctx, tool.Command{
//	    Path: "yt-dlp",
//	    Args: []string{"--dump-single-json", url},
//	})
//	if err != nil {
//	    var exitErr *tool.ExitError
//	    if errors.As(err, &exitErr) {
//	        fmt.Println(exitErr.Code, exitErr.Stderr)
//	    }
//	}
//	fmt.Println(len(res.Stdout))
//
// # Streaming
//
// Set OnStdout / OnStderr to receive each output line as it is written:
//
//	tool.Run(ctx, tool.Command{
//	    Path:     "spotdl",
//	    Args:     []string{"download", url},
//	    Dir:      albumDir,
//	    OnStdout: func(line string) { fmt.Println(line) },
//	})
package tool
