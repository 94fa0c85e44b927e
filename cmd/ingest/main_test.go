package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDocumentsAcceptsNumericAndStringIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": 42, "text": "numeric", "metadata": {"source": "a"}},
		{"id": "doc-omni", "text": "string"}
	]`), 0o644))

	docs, err := readDocuments(path)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "42", docs[0].ID)
	assert.Equal(t, "a", docs[0].Metadata["source"])
	assert.Equal(t, "doc-omni", docs[1].ID)
}

func TestReadDocumentsRejectsMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"text": "no id"}]`), 0o644))

	_, err := readDocuments(path)
	assert.Error(t, err)
}

func TestLoadCommandValidatesCollection(t *testing.T) {
	targetCollection = "archive"
	defer func() { targetCollection = "general" }()

	err := runLoad(loadCmd, []string{"unused.json"})
	assert.ErrorContains(t, err, "unsupported collection")
}
