package main

import (
	"testing"

	"github.com/smallbiznis/streetsignal/internal/catalog/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagDefaults(t *testing.T) {
	opts := &options{}
	cmd := newCmd(opts)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, importer.DefaultDatasetURL, opts.datasetURL)
	assert.Equal(t, importer.DefaultBatchSize, opts.batchSize)
	assert.Zero(t, opts.maxPages)
	assert.True(t, opts.migrate)
	assert.NoError(t, opts.validate())
}

func TestFlagNormalization(t *testing.T) {
	opts := &options{}
	cmd := newCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--max_pages", "3", "-b", "50"}))

	assert.Equal(t, 3, opts.maxPages)
	assert.Equal(t, 50, opts.batchSize)
}

func TestValidateRejectsBadBatch(t *testing.T) {
	assert.Error(t, (&options{batchSize: 0}).validate())
	assert.Error(t, (&options{batchSize: 101}).validate())
	assert.Error(t, (&options{batchSize: 10, maxPages: -1}).validate())
}
