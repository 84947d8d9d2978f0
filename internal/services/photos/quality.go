// Package photos handles issue and resolution photo storage plus lightweight
// quality checks on uploaded images.
package photos

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

const headTimeout = 5 * time.Second

// PhotoResult is the quality verdict for one photo URL.
type PhotoResult struct {
	URL      string   `json:"url"`
	Quality  string   `json:"quality"`
	SizeKB   *float64 `json:"size_kb"`
	Warnings []string `json:"warnings"`
}

// QualityReport aggregates per-photo verdicts. The overall quality is the
// worst individual verdict.
type QualityReport struct {
	OverallQuality string        `json:"overall_quality"`
	Results        []PhotoResult `json:"results"`
}

// QualityChecker inspects photo URLs using HEAD metadata only; it never
// downloads image bytes.
type QualityChecker struct {
	client *http.Client
}

// NewQualityChecker returns a checker with a short per-request timeout.
func NewQualityChecker() *QualityChecker {
	return &QualityChecker{client: &http.Client{Timeout: headTimeout}}
}

// CheckPhotoQuality grades each URL by reported content length. Small files
// are flagged as likely low quality; unreachable URLs grade as unknown.
func (c *QualityChecker) CheckPhotoQuality(urls []string) QualityReport {
	results := make([]PhotoResult, 0, len(urls))
	for _, url := range urls {
		results = append(results, c.checkOne(url))
	}

	overall := "good"
	for _, r := range results {
		if r.Quality == "low" {
			overall = "low"
			break
		}
		if r.Quality == "medium" {
			overall = "medium"
		}
	}

	return QualityReport{OverallQuality: overall, Results: results}
}

func (c *QualityChecker) checkOne(url string) PhotoResult {
	result := PhotoResult{URL: url, Quality: "unknown", Warnings: []string{}}

	resp, err := c.client.Head(url)
	if err != nil {
		result.Warnings = append(result.Warnings, "Unable to verify image metadata")
		return result
	}
	defer resp.Body.Close()

	length := resp.Header.Get("Content-Length")
	if length == "" {
		return result
	}
	bytes, err := strconv.ParseInt(length, 10, 64)
	if err != nil {
		result.Warnings = append(result.Warnings, "Unable to verify image metadata")
		return result
	}

	sizeKB := math.Round(float64(bytes)/1024*10) / 10
	result.SizeKB = &sizeKB
	switch {
	case sizeKB < 30:
		result.Quality = "low"
		result.Warnings = append(result.Warnings, "File size is very small; image may be low quality")
	case sizeKB < 80:
		result.Quality = "medium"
		result.Warnings = append(result.Warnings, "Image size is moderate")
	default:
		result.Quality = "good"
	}
	return result
}
