package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024 / 2, "1.5 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanBytes(tt.in))
	}
}

func TestResultsTable(t *testing.T) {
	color.NoColor = true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs/job-1/results", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Write([]byte(`{"job_id":"job-1","total_results":2,"results":[
			{"candidate_name":"Ada Lovelace","classification":{"category":"tech","level":"senior"},"fit_score":91,"recommendation":"STRONG_FIT"},
			{"candidate_name":"Sam Lee","classification":{"category":"non-tech","level":"entry"},"fit_score":40,"recommendation":"WEAK_FIT"}
		]}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	c := &cli{baseURL: srv.URL, apiKey: "secret", http: srv.Client(), out: &out}
	require.NoError(t, c.results(context.Background(), "job-1"))

	assert.Contains(t, out.String(), "Ada Lovelace")
	assert.Contains(t, out.String(), "STRONG_FIT")
	assert.Contains(t, out.String(), "91")
}

func TestGetJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"JOB_NOT_FOUND","message":"Job not found"}`))
	}))
	defer srv.Close()

	c := &cli{baseURL: srv.URL, http: srv.Client(), out: &bytes.Buffer{}}
	err := c.results(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOB_NOT_FOUND")
}
