package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/wstools-go/internal/config"
	"github.com/wagiedev/wstools-go/internal/tool"
	"github.com/wagiedev/wstools-go/internal/vector"
)

func TestRegister_AllSets(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, Register(reg, Sets, Deps{Vectors: vector.NewStore(vector.Options{})}))

	require.Equal(t, []string{
		"greeting", "translate", "test",
		"reverse", "is_palindrome",
		"rag_query", "rag_add", "rag_update", "rag_delete", "retrieve_mock",
		"retrieve",
		"query_url", "term_match",
		"sql_query",
	}, reg.Names())
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sets    []string
		deps    Deps
		wantErr string
	}{
		{"unknown set", []string{"nope"}, Deps{}, `unknown tool set "nope"`},
		{"vector without store", []string{"rag"}, Deps{}, "tool set rag needs a vector store"},
		{"set twice", []string{"text", "text"}, Deps{}, "register tool set text: tool already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Register(tool.NewRegistry(), tt.sets, tt.deps)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuild(t *testing.T) {
	cfg := &config.File{Tools: config.ToolsFile{Sets: []string{"url", "sql"}}}

	reg, closeFn, err := Build(context.Background(), nil, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, closeFn()) })

	require.Equal(t, []string{"query_url", "term_match", "sql_query"}, reg.Names())

	d, err := reg.Lookup("query_url")
	require.NoError(t, err)

	got, err := d.Invoke(context.Background(), tool.Args{"natural_language_input": "查询城市天气"})
	require.NoError(t, err)

	matches, ok := got.([]vector.Match)
	require.True(t, ok)
	require.Len(t, matches, 1)
	require.Equal(t, "/api/v1/weather/{city_code}", matches[0].Metadata["uri"])
}

func TestBuild_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "url.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- uri: /only\n  ap: GET\n  desc: the only record\n"), 0o600))

	cfg := &config.File{
		Tools: config.ToolsFile{Sets: []string{"vector"}},
		RAG:   config.RAGFile{SeedFile: path},
	}

	reg, closeFn, err := Build(context.Background(), nil, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	d, err := reg.Lookup("retrieve_mock")
	require.NoError(t, err)

	got, err := d.Invoke(context.Background(), tool.Args{"question": "q", "top_k": float64(5), "store": "url"})
	require.NoError(t, err)
	require.Equal(t, []map[string]any{{"uri": "/only", "ap": "GET", "desc": "the only record"}}, got)

	cfg.RAG.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err = Build(context.Background(), nil, cfg)
	require.Error(t, err)
}
