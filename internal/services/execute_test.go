package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codecollab/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJudgeStub(t *testing.T, statusID int, stdout, stderr, compileOut string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	// Method-prefixed ServeMux patterns ("POST /submissions") need Go 1.22+;
	// check the method explicitly so the stub also works on Go 1.21.
	mux.HandleFunc("/submissions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"token": "tok-1"})
	})
	mux.HandleFunc("/submissions/tok-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"stdout":         stdout,
			"stderr":         stderr,
			"compile_output": compileOut,
			"status":         map[string]any{"id": statusID, "description": ""},
		})
	})
	return httptest.NewServer(mux)
}

func newExecService(url string) *ExecuteService {
	return NewExecuteService(&config.Config{Judge0URL: url})
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("successful run returns stdout", func(t *testing.T) {
		server := newJudgeStub(t, 3, "hello\n", "", "")
		defer server.Close()

		result, err := newExecService(server.URL).Execute(ctx, `print("hello")`, "python")
		require.NoError(t, err)
		assert.Equal(t, "hello", result.Output)
		assert.Empty(t, result.Error)
		assert.Equal(t, "python", result.Language)
	})

	t.Run("compilation error is surfaced", func(t *testing.T) {
		server := newJudgeStub(t, 6, "", "", "main.go:3: syntax error")
		defer server.Close()

		result, err := newExecService(server.URL).Execute(ctx, "func main(", "go")
		require.NoError(t, err)
		assert.Empty(t, result.Output)
		assert.Equal(t, "main.go:3: syntax error", result.Error)
	})

	t.Run("unsupported language is rejected", func(t *testing.T) {
		_, err := newExecService("http://unused").Execute(ctx, "code", "brainfuck")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not supported")
	})

	t.Run("every judge language resolves", func(t *testing.T) {
		want := map[string]int{
			"scheme":       87,
			"prolog":       89,
			"coffeescript": 55,
			"matlab":       66,
			"objective-c":  79,
			"vb.net":       51,
			"f#":           87,
			"groovy":       88,
			"tcl":          90,
			"zsh":          46,
			"pony":         95,
			"v":            96,
			"pyw":          71,
			"cjs":          63,
		}
		for lang, id := range want {
			assert.Equal(t, id, judge0Languages[lang], "language %q", lang)
		}
	})
}
