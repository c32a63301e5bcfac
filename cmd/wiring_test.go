package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/ats-ingest/internal/adapter"
	"jobmate/ats-ingest/internal/model"
)

func TestWithEndpoints(t *testing.T) {
	in := []model.Target{
		{ID: "1", Slug: "acme", SourceType: "lever"},
		{ID: "2", Slug: "globex", SourceType: "greenhouse", Endpoint: "https://mirror.example/globex"},
		{ID: "3", Slug: "initech", SourceType: "taleo"},
	}
	out := withEndpoints(in, adapter.Default())

	assert.Equal(t, adapter.Lever{}.Endpoint("acme"), out[0].Endpoint)
	assert.Equal(t, "https://mirror.example/globex", out[1].Endpoint)
	assert.Empty(t, out[2].Endpoint)
	assert.Empty(t, in[0].Endpoint, "input is not modified")
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"scrape", "daemon", "sweep", "targets"} {
		cmd, _, err := root.Find([]string{name})
		assert.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	scrape, _, _ := root.Find([]string{"scrape"})
	for _, flag := range []string{"source", "target", "limit", "dry-run", "resume", "fresh", "targets-file"} {
		assert.NotNil(t, scrape.Flags().Lookup(flag), flag)
	}
}
