// Command ats-upload scores a batch of resume files against one job.
//
//	ats-upload -server http://localhost:8080 -job <job-id> cv1.pdf cv2.docx ...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/terra-clan/ats-engine/pkg/client"
)

func main() {
	server := flag.String("server", envOr("ATS_SERVER", "http://localhost:8080"), "ats-engine base URL")
	jobID := flag.String("job", "", "job ID to score the resumes against")
	timeout := flag.Duration("timeout", 3*time.Minute, "per-file request timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s -job <job-id> [flags] file...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *jobID == "" || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(*server, client.WithTimeout(*timeout))
	succeeded := 0

	report := c.UploadResumes(ctx, *jobID, flag.Args(), func(done, total int, res client.FileResult) {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s: %v\n", done, total, res.Path, res.Err)
			return
		}
		succeeded++
		fmt.Printf("[%d/%d] %s: %s scored %.2f (%d uploaded)\n",
			done, total, res.Path, res.Candidate.Name, res.Candidate.Score, succeeded)
	})

	failed := len(report.Failed())
	fmt.Printf("uploaded %d of %d resumes\n", report.Succeeded, len(report.Results))
	if failed > 0 {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
