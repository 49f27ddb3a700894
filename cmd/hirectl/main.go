// Command hirectl is a terminal client for the Hire AI API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/uploader"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/olekukonko/tablewriter"
)

const usage = `usage: hirectl [-api URL] [-key KEY] <command>

commands:
  jobs                          list job posts
  results <job_id>              ranked screening results of a job
  upload-recording -session ID -file PATH [-type video/webm]
`

type cli struct {
	baseURL string
	apiKey  string
	http    *http.Client
	out     io.Writer
}

func main() {
	fs := flag.NewFlagSet("hirectl", flag.ExitOnError)
	apiURL := fs.String("api", envOr("HIRE_API_URL", "http://localhost:8080"), "API base URL")
	apiKey := fs.String("key", os.Getenv("HIRE_API_KEY"), "admin API key")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{
		baseURL: strings.TrimRight(*apiURL, "/"),
		apiKey:  *apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		out:     os.Stdout,
	}

	var err error
	args := fs.Args()
	switch args[0] {
	case "jobs":
		err = c.jobs(ctx)
	case "results":
		if len(args) < 2 {
			err = errors.New("results: job id required")
			break
		}
		err = c.results(ctx, args[1])
	case "upload-recording":
		err = c.uploadRecording(ctx, args[1:])
	default:
		fs.Usage()
		os.Exit(2)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func (c *cli) jobs(ctx context.Context) error {
	var page job.PaginatedJobsResponse
	if err := c.getJSON(ctx, "/api/jobs?page_size=100", &page); err != nil {
		return err
	}

	color.Cyan("\n=== Job Posts (%d) ===", page.Page.Total)
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"ID", "Role", "Experience", "Status", "Analyzed", "Resumes"})
	for _, j := range page.Items {
		table.Append([]string{
			j.ID.String(),
			string(j.JobRole),
			j.RequiredExperience,
			string(j.Status),
			yesNo(j.Analysis != nil),
			fmt.Sprintf("%d/%d", j.ProcessedResumes, j.TotalResumes),
		})
	}
	table.Render()
	return nil
}

func (c *cli) results(ctx context.Context, jobID string) error {
	var resp resume.ResultsResponse
	if err := c.getJSON(ctx, "/api/jobs/"+jobID+"/results?limit=100", &resp); err != nil {
		return err
	}

	color.Cyan("\n=== Ranked Candidates (%d) ===", resp.TotalResults)
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Rank", "Candidate", "Category", "Level", "Fit", "Recommendation"})
	for i, r := range resp.Results {
		table.Append([]string{
			strconv.Itoa(i + 1),
			string(r.CandidateName),
			string(r.Classification.Category),
			string(r.Classification.Level),
			strconv.Itoa(r.FitScore),
			recommendationColor(r.Recommendation).Sprint(r.Recommendation),
		})
	}
	table.Render()
	return nil
}

func (c *cli) uploadRecording(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload-recording", flag.ContinueOnError)
	sessionID := fs.String("session", "", "interview session id")
	path := fs.String("file", "", "recording file")
	contentType := fs.String("type", "", "content type (default video/webm)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sessionID == "" || *path == "" {
		return errors.New("upload-recording: -session and -file are required")
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	client := uploader.New(c.baseURL, &http.Client{Timeout: 5 * time.Minute})
	res, err := client.Upload(ctx, f, info.Size(), uploader.Options{
		SessionID:   *sessionID,
		ContentType: *contentType,
		OnProgress: func(p uploader.Progress) {
			fmt.Fprintf(c.out, "\rblock %d/%d  %s  %6.2f%%", p.Block, p.Total, humanBytes(p.Bytes), p.Percent)
		},
	})
	fmt.Fprintln(c.out)
	if err != nil {
		return err
	}

	color.Green("Uploaded %s in %d blocks", humanBytes(res.Bytes), res.Blocks)
	fmt.Fprintf(c.out, "Recording URL: %s\n", res.RecordingURL)
	return nil
}

func (c *cli) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Code    any    `json:"code"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("%s: %d %v %s", path, resp.StatusCode, body.Code, body.Message)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func recommendationColor(r resume.Recommendation) *color.Color {
	switch r {
	case resume.RecommendationStrongFit:
		return color.New(color.FgGreen, color.Bold)
	case resume.RecommendationGoodFit:
		return color.New(color.FgGreen)
	case resume.RecommendationModerateFit:
		return color.New(color.FgYellow)
	case resume.RecommendationWeakFit:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgMagenta)
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
