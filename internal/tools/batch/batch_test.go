package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		param   interface{}
		want    []string
		wantErr bool
	}{
		{"single string", "id1", []string{"id1"}, false},
		{"array", []interface{}{"id1", "id2"}, []string{"id1", "id2"}, false},
		{"nil", nil, nil, true},
		{"empty string", "", nil, true},
		{"empty array", []interface{}{}, nil, true},
		{"array with non-string", []interface{}{"id1", 7}, nil, true},
		{"array with empty element", []interface{}{"id1", ""}, nil, true},
		{"wrong type", 42, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.param, "messageIds")
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestProcessBatch(t *testing.T) {
	results := ProcessBatch([]string{"a", "b", "c"}, func(id string) (string, error) {
		if id == "b" {
			return "", errors.New("not found")
		}
		return "done", nil
	})

	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Status != "success" || results[0].Result != "done" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Status != "error" || results[1].Error != "not found" {
		t.Errorf("results[1] = %+v", results[1])
	}
	if results[2].Status != "success" {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestProcessChunks(t *testing.T) {
	ids := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		ids = append(ids, fmt.Sprintf("id%d", i))
	}

	var chunks [][]string
	results := ProcessChunks(ids, 3, func(chunk []string) error {
		chunks = append(chunks, append([]string(nil), chunk...))
		// Failing the middle chunk must not stop the remaining ones.
		if chunk[0] == "id3" {
			return errors.New("backend unavailable")
		}
		return nil
	})

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 3 || len(chunks[1]) != 3 || len(chunks[2]) != 1 {
		t.Errorf("chunk sizes: %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}

	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d", len(results))
	}
	failed := 0
	for _, r := range results {
		if r.Status == "error" {
			failed++
			if r.Error != "backend unavailable" {
				t.Errorf("unexpected error text %q", r.Error)
			}
		}
	}
	if failed != 3 {
		t.Errorf("a failed chunk should mark all 3 of its IDs, got %d", failed)
	}
}

func TestProcessChunksDefaultSize(t *testing.T) {
	ids := make([]string, DefaultChunkSize+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%d", i)
	}

	calls := 0
	ProcessChunks(ids, 0, func(chunk []string) error {
		calls++
		if len(chunk) > DefaultChunkSize {
			t.Errorf("chunk of %d exceeds default size", len(chunk))
		}
		return nil
	})
	if calls != 2 {
		t.Errorf("expected 2 chunks, got %d", calls)
	}
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{
		{ID: "a", Status: "success", Result: "ok"},
		{ID: "b", Status: "error", Error: "nope"},
	})

	var br BatchResult
	if err := json.Unmarshal([]byte(out), &br); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if br.Total != 2 || br.Successful != 1 || br.Failed != 1 {
		t.Errorf("tallies: %+v", br)
	}
	if len(br.Results) != 2 {
		t.Errorf("results: %+v", br.Results)
	}
}
